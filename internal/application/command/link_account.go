package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/server"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK ACCOUNT COMMAND
// Links a Discord account to a LeetCode handle. The handle is verified
// against the judge before anything is stored; a successful link also
// enrolls the user in the community and the global leaderboard.
// ══════════════════════════════════════════════════════════════════════════════

// LinkAccountCommand contains the data to link an account.
type LinkAccountCommand struct {
	// UserID is the Discord account being linked.
	UserID user.DiscordID

	// ServerID is the community where the link was initiated.
	ServerID int64

	// Handle is the claimed LeetCode username.
	Handle user.Handle
}

// Validate validates the command.
func (c LinkAccountCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("link_account: user_id is required")
	}
	if c.ServerID < 0 {
		return errors.New("link_account: invalid server_id")
	}
	if !c.Handle.IsValid() {
		return fmt.Errorf("link_account: invalid handle: %q", c.Handle)
	}
	return nil
}

// LinkAccountResult contains the result of linking.
type LinkAccountResult struct {
	// User is the stored user with its initial stats.
	User *user.User

	// AlreadyLinked indicates the account was linked before; only the
	// community profile was added.
	AlreadyLinked bool
}

// LinkAccountHandler handles account linking.
type LinkAccountHandler struct {
	users     user.Repository
	profiles  user.ProfileRepository
	servers   server.Repository
	snapshots leaderboard.SnapshotRepository
	judge     user.StatsProvider
	publisher shared.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// LinkAccountOption configures a LinkAccountHandler.
type LinkAccountOption func(*LinkAccountHandler)

// WithLinkClock overrides the wall clock, for tests.
func WithLinkClock(now func() time.Time) LinkAccountOption {
	return func(h *LinkAccountHandler) { h.now = now }
}

// NewLinkAccountHandler creates a new link handler.
func NewLinkAccountHandler(
	users user.Repository,
	profiles user.ProfileRepository,
	servers server.Repository,
	snapshots leaderboard.SnapshotRepository,
	judge user.StatsProvider,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	opts ...LinkAccountOption,
) *LinkAccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &LinkAccountHandler{
		users:     users,
		profiles:  profiles,
		servers:   servers,
		snapshots: snapshots,
		judge:     judge,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes the link.
func (h *LinkAccountHandler) Handle(ctx context.Context, cmd LinkAccountCommand) (*LinkAccountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "LinkAccount", shared.ErrValidation, err.Error(), err)
	}

	// Verify the handle against the judge before storing anything.
	counts, err := h.judge.FetchUserStats(ctx, cmd.Handle)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrHandleNotFound
		}
		return nil, shared.WrapError("command", "LinkAccount", shared.ErrExternalService,
			"failed to verify handle", err)
	}

	result := &LinkAccountResult{}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	switch {
	case err == nil:
		result.AlreadyLinked = true
	case shared.IsNotFound(err):
		u, err = user.NewUser(cmd.UserID, cmd.Handle, counts)
		if err != nil {
			return nil, shared.WrapError("command", "LinkAccount", shared.ErrValidation, "invalid user", err)
		}
		if err := h.users.Create(ctx, u); err != nil {
			return nil, shared.WrapError("command", "LinkAccount", shared.ErrInternal, "failed to store user", err)
		}
		h.seedBaseline(ctx, cmd.UserID, counts)
		h.publishEvent(shared.NewBaseEvent(shared.EventUserLinked, cmd.UserID.String()))
	default:
		return nil, err
	}
	result.User = u

	// Enroll in the initiating community and the global leaderboard.
	for _, serverID := range []int64{cmd.ServerID, server.GlobalServerID} {
		if err := h.ensureProfile(ctx, cmd.UserID, serverID); err != nil {
			return nil, err
		}
	}

	h.logger.Info("account linked",
		slog.Int64("user_id", int64(cmd.UserID)),
		slog.String("handle", cmd.Handle.String()),
		slog.Int64("server_id", cmd.ServerID),
		slog.Bool("already_linked", result.AlreadyLinked),
	)

	return result, nil
}

// seedBaseline writes a snapshot of the verified counts at the current
// day boundary, so the user's first period scores against the numbers
// they linked with instead of against zero.
func (h *LinkAccountHandler) seedBaseline(ctx context.Context, userID user.DiscordID, counts user.SubmissionCounts) {
	snap, err := leaderboard.NewSnapshot(userID, leaderboard.Truncate(h.now()), counts)
	if err != nil {
		h.logger.Warn("baseline snapshot rejected",
			slog.Int64("user_id", int64(userID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := h.snapshots.Insert(ctx, snap); err != nil && !shared.IsAlreadyExists(err) {
		// A missing baseline degrades the first period's score, it does
		// not break the link itself.
		h.logger.Warn("baseline snapshot not stored",
			slog.Int64("user_id", int64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

// ensureProfile creates the community profile if it does not exist yet.
func (h *LinkAccountHandler) ensureProfile(ctx context.Context, userID user.DiscordID, serverID int64) error {
	_, err := h.profiles.Get(ctx, userID, serverID)
	if err == nil {
		return nil
	}
	if !shared.IsNotFound(err) {
		return err
	}

	p, err := user.NewProfile(userID, serverID)
	if err != nil {
		return shared.WrapError("command", "LinkAccount", shared.ErrValidation, "invalid profile", err)
	}
	if err := h.profiles.Create(ctx, p); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil
		}
		return shared.WrapError("command", "LinkAccount", shared.ErrInternal, "failed to store profile", err)
	}
	return nil
}

func (h *LinkAccountHandler) publishEvent(event shared.Event) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Warn("event publish failed",
			slog.String("type", string(event.EventType())),
			slog.String("error", err.Error()),
		)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UNLINK ACCOUNT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UnlinkAccountCommand removes a linked account and all derived data.
type UnlinkAccountCommand struct {
	UserID user.DiscordID
}

// UnlinkAccountHandler handles account removal.
type UnlinkAccountHandler struct {
	users     user.Repository
	snapshots leaderboard.SnapshotRepository
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewUnlinkAccountHandler creates a new unlink handler.
func NewUnlinkAccountHandler(
	users user.Repository,
	snapshots leaderboard.SnapshotRepository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *UnlinkAccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnlinkAccountHandler{
		users:     users,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle removes the user, their profiles and their snapshot history.
func (h *UnlinkAccountHandler) Handle(ctx context.Context, cmd UnlinkAccountCommand) error {
	if !cmd.UserID.IsValid() {
		return shared.WrapError("command", "UnlinkAccount", shared.ErrValidation, "user_id is required", nil)
	}

	if _, err := h.users.GetByID(ctx, cmd.UserID); err != nil {
		return err
	}

	if err := h.snapshots.DeleteByUser(ctx, cmd.UserID); err != nil {
		return shared.WrapError("command", "UnlinkAccount", shared.ErrInternal, "failed to delete snapshots", err)
	}
	// Profiles are removed alongside the user row (cascading delete).
	if err := h.users.Delete(ctx, cmd.UserID); err != nil {
		return shared.WrapError("command", "UnlinkAccount", shared.ErrInternal, "failed to delete user", err)
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(shared.NewBaseEvent(shared.EventUserUnlinked, cmd.UserID.String())); err != nil {
			h.logger.Warn("event publish failed", slog.String("error", err.Error()))
		}
	}

	h.logger.Info("account unlinked", slog.Int64("user_id", int64(cmd.UserID)))
	return nil
}
