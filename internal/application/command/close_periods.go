// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/server"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLOSE PERIODS COMMAND
// The period-close orchestrator: refreshes every user's stats from the
// judge, writes boundary snapshots, and credits winners per community.
// Safe to re-run for the same instant - snapshots and win counters are
// both guarded against double application.
// ══════════════════════════════════════════════════════════════════════════════

// ClosePeriodsCommand contains the orchestrator invocation parameters.
type ClosePeriodsCommand struct {
	// ReferenceAt is the instant driving the calendar alignment.
	// Zero value means "now".
	ReferenceAt time.Time

	// Overrides force-close periods regardless of calendar alignment.
	// Used by the administrative trigger.
	OverrideDay   bool
	OverrideWeek  bool
	OverrideMonth bool
}

// ClosePeriodsResult contains statistics from one orchestrator run.
type ClosePeriodsResult struct {
	StartedAt   time.Time
	CompletedAt time.Time

	Closed leaderboard.Closes

	TotalUsers       int
	RefreshedCount   int
	FailedCount      int
	SnapshotsWritten int

	// WinnersCredited counts win-counter increments actually applied
	// (already-credited re-runs are not counted).
	WinnersCredited int
}

// Duration returns the wall-clock length of the run.
func (r *ClosePeriodsResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// ClosePeriodsConfig tunes the orchestrator.
type ClosePeriodsConfig struct {
	// Concurrency caps parallel outbound judge calls.
	Concurrency int

	// RefreshTimeout bounds the whole refresh fan-out.
	RefreshTimeout time.Duration
}

// DefaultClosePeriodsConfig returns sensible defaults.
func DefaultClosePeriodsConfig() ClosePeriodsConfig {
	return ClosePeriodsConfig{
		Concurrency:    5,
		RefreshTimeout: 10 * time.Minute,
	}
}

// ScoreResolver is the period-score contract the orchestrator consumes.
type ScoreResolver interface {
	Resolve(ctx context.Context, u *user.User, kind shared.PeriodKind, wantPrevious bool) (user.Score, error)
}

// ClosePeriodsHandler orchestrates a period close.
type ClosePeriodsHandler struct {
	users     user.Repository
	profiles  user.ProfileRepository
	servers   server.Repository
	snapshots leaderboard.SnapshotRepository
	judge     user.StatsProvider
	resolver  ScoreResolver
	cache     leaderboard.Cache
	publisher shared.EventPublisher
	logger    *slog.Logger
	config    ClosePeriodsConfig
	now       func() time.Time
}

// ClosePeriodsOption configures the handler.
type ClosePeriodsOption func(*ClosePeriodsHandler)

// WithClock replaces the time source (for tests).
func WithClock(now func() time.Time) ClosePeriodsOption {
	return func(h *ClosePeriodsHandler) { h.now = now }
}

// NewClosePeriodsHandler creates the orchestrator.
func NewClosePeriodsHandler(
	users user.Repository,
	profiles user.ProfileRepository,
	servers server.Repository,
	snapshots leaderboard.SnapshotRepository,
	judge user.StatsProvider,
	resolver ScoreResolver,
	cache leaderboard.Cache,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	config ClosePeriodsConfig,
	opts ...ClosePeriodsOption,
) *ClosePeriodsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}

	h := &ClosePeriodsHandler{
		users:     users,
		profiles:  profiles,
		servers:   servers,
		snapshots: snapshots,
		judge:     judge,
		resolver:  resolver,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes one orchestrator run.
//
// Order matters: the refresh fan-out writes every snapshot for the
// closing boundary before winner computation reads them (a barrier
// between fan-out and fan-in). Winner crediting is guarded per
// (user, community, kind, boundary), so an identical re-run is a no-op.
func (h *ClosePeriodsHandler) Handle(ctx context.Context, cmd ClosePeriodsCommand) (*ClosePeriodsResult, error) {
	ref := cmd.ReferenceAt
	if ref.IsZero() {
		ref = h.now()
	}
	ref = ref.UTC()

	closes := leaderboard.ClosesAt(ref)
	closes.Day = closes.Day || cmd.OverrideDay
	closes.Week = closes.Week || cmd.OverrideWeek
	closes.Month = closes.Month || cmd.OverrideMonth

	result := &ClosePeriodsResult{
		StartedAt: h.now(),
		Closed:    closes,
	}

	h.logger.Info("period close started",
		slog.Time("reference", ref),
		slog.Bool("day", closes.Day),
		slog.Bool("week", closes.Week),
		slog.Bool("month", closes.Month),
	)

	allUsers, err := h.users.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("command", "ClosePeriods", shared.ErrInternal, "failed to list users", err)
	}
	result.TotalUsers = len(allUsers)

	// Refresh stats and write boundary snapshots. Runs every cycle:
	// snapshots only when a day closes, fresh stats always.
	h.refreshAll(ctx, allUsers, closes.Day, leaderboard.Truncate(ref), result)

	// Barrier passed: every snapshot for this boundary is written.
	if closes.Day {
		h.publishEvent(shared.NewPeriodClosedEvent(
			shared.PeriodDay.String(), leaderboard.Truncate(ref), result.SnapshotsWritten, "system"))
	}

	if closes.Any() {
		if err := h.creditWinners(ctx, closes, ref, result); err != nil {
			return nil, err
		}
	}

	h.recordCycle(ctx, result.StartedAt)

	result.CompletedAt = h.now()
	h.publishEvent(shared.NewRefreshCompletedEvent(
		result.TotalUsers, result.RefreshedCount, result.FailedCount, result.Duration(), "system"))

	h.logger.Info("period close completed",
		slog.Duration("duration", result.Duration()),
		slog.Int("total", result.TotalUsers),
		slog.Int("refreshed", result.RefreshedCount),
		slog.Int("failed", result.FailedCount),
		slog.Int("snapshots", result.SnapshotsWritten),
		slog.Int("winners", result.WinnersCredited),
	)

	return result, nil
}

// refreshAll fans out per-user refreshes over a bounded worker pool.
// One user's failure never aborts the cycle for the rest. Returns only
// after every in-flight worker has finished, including when the
// refresh window expires: winner computation reads the snapshots these
// workers write.
func (h *ClosePeriodsHandler) refreshAll(ctx context.Context, users []*user.User, writeSnapshots bool, boundary time.Time, result *ClosePeriodsResult) {
	if h.config.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.RefreshTimeout)
		defer cancel()
	}

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, h.config.Concurrency)
		mu        sync.Mutex
	)

	dispatched := 0

dispatch:
	for _, u := range users {
		select {
		case <-ctx.Done():
			// The refresh window expired. Stop dispatching, but the
			// in-flight workers below must drain before winner
			// computation may read snapshots.
			h.logger.Warn("refresh window expired, remaining users stay stale",
				slog.Int("remaining", len(users)-dispatched))
			break dispatch
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}
		dispatched++

		go func(u *user.User) {
			defer wg.Done()
			defer func() { <-semaphore }()

			snapshotWritten, err := h.refreshOne(ctx, u, writeSnapshots, boundary)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.FailedCount++
				h.logger.Error("user refresh failed, data stays stale until next cycle",
					slog.Int64("user_id", int64(u.ID)),
					slog.String("handle", u.Handle.String()),
					slog.String("error", err.Error()),
				)
				return
			}
			result.RefreshedCount++
			if snapshotWritten {
				result.SnapshotsWritten++
			}
		}(u)
	}

	wg.Wait()
}

// refreshOne fetches fresh stats for one user and, on a closing day
// boundary, writes the snapshot. The (user, boundary) unique key makes
// the write idempotent: a duplicate from a retried run is not a failure.
func (h *ClosePeriodsHandler) refreshOne(ctx context.Context, u *user.User, writeSnapshot bool, boundary time.Time) (bool, error) {
	counts, err := h.judge.FetchUserStats(ctx, u.Handle)
	if err != nil {
		return false, fmt.Errorf("fetch stats: %w", err)
	}

	oldScore := u.TotalScore
	if _, err := u.UpdateStats(counts); err != nil {
		return false, fmt.Errorf("update stats: %w", err)
	}
	if err := h.users.SaveStats(ctx, u); err != nil {
		return false, fmt.Errorf("save stats: %w", err)
	}

	if oldScore != u.TotalScore {
		h.publishEvent(shared.NewUserStatsUpdatedEvent(
			int64(u.ID), int(oldScore), int(u.TotalScore), u.ID.String()))
	}

	if !writeSnapshot {
		return false, nil
	}

	snap, err := leaderboard.NewSnapshot(u.ID, boundary, counts)
	if err != nil {
		return false, fmt.Errorf("build snapshot: %w", err)
	}
	if err := h.snapshots.Insert(ctx, snap); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Re-run for the same boundary; the first write won.
			return false, nil
		}
		return false, fmt.Errorf("insert snapshot: %w", err)
	}
	return true, nil
}

// creditWinners computes per-community winners for every closed kind
// and increments their win counters.
func (h *ClosePeriodsHandler) creditWinners(ctx context.Context, closes leaderboard.Closes, ref time.Time, result *ClosePeriodsResult) error {
	servers, err := h.servers.GetAll(ctx)
	if err != nil {
		return shared.WrapError("command", "ClosePeriods", shared.ErrInternal, "failed to list servers", err)
	}

	for _, srv := range servers {
		for _, kind := range closes.Kinds() {
			if err := h.creditServerWinners(ctx, srv, kind, ref, result); err != nil {
				// One community's failure does not stop the rest.
				h.logger.Error("winner crediting failed",
					slog.Int64("server_id", srv.ID),
					slog.String("period", kind.String()),
					slog.String("error", err.Error()),
				)
			}
		}

		if h.cache != nil {
			if err := h.cache.Invalidate(ctx, srv.ID); err != nil {
				h.logger.Warn("leaderboard cache invalidation failed",
					slog.Int64("server_id", srv.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return nil
}

// creditServerWinners finds the winners of one closed period in one
// community and credits each exactly once.
func (h *ClosePeriodsHandler) creditServerWinners(ctx context.Context, srv *server.Server, kind shared.PeriodKind, ref time.Time, result *ClosePeriodsResult) error {
	// The closing boundary is the period end.
	_, boundary, err := leaderboard.Bounds(kind, ref)
	if err != nil {
		return err
	}

	profiles, err := h.profiles.ListByServer(ctx, srv.ID)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil
	}

	entries := make([]leaderboard.Entry, 0, len(profiles))
	for _, p := range profiles {
		u, err := h.users.GetByID(ctx, p.UserID)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return err
		}

		score, err := h.resolver.Resolve(ctx, u, kind, true)
		if err != nil {
			return fmt.Errorf("resolve score for user %d: %w", u.ID, err)
		}

		entries = append(entries, leaderboard.Entry{
			UserID: u.ID,
			Metric: int(score),
		})
	}

	ranking := leaderboard.Rank(srv.ID, kind, leaderboard.SortByScore, entries)
	champions := ranking.Champions()
	if len(champions) == 0 {
		// An all-zero period has no winners.
		return nil
	}

	winnerIDs := make([]int64, 0, len(champions))
	for _, champ := range champions {
		err := h.profiles.CreditWin(ctx, champ.UserID, srv.ID, kind.String(), boundary)
		if err != nil {
			if errors.Is(err, user.ErrWinAlreadyCounted) {
				// Identical re-run; already applied.
				continue
			}
			h.logger.Error("win credit failed",
				slog.Int64("user_id", int64(champ.UserID)),
				slog.Int64("server_id", srv.ID),
				slog.String("period", kind.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.WinnersCredited++
		winnerIDs = append(winnerIDs, int64(champ.UserID))
	}

	if len(winnerIDs) > 0 {
		h.publishEvent(shared.NewWinnersDeclaredEvent(
			srv.ID, kind.String(), boundary, winnerIDs, ranking.TopScore(),
			fmt.Sprintf("server:%d", srv.ID)))
	}

	return nil
}

// recordCycle stamps the refresh bookkeeping on every community.
func (h *ClosePeriodsHandler) recordCycle(ctx context.Context, startedAt time.Time) {
	servers, err := h.servers.GetAll(ctx)
	if err != nil {
		h.logger.Warn("failed to list servers for bookkeeping", slog.String("error", err.Error()))
		return
	}
	for _, srv := range servers {
		srv.MarkRefreshed(startedAt, h.now())
		if err := h.servers.Save(ctx, srv); err != nil {
			h.logger.Warn("failed to record refresh cycle",
				slog.Int64("server_id", srv.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// publishEvent publishes a domain event, tolerating a missing bus.
func (h *ClosePeriodsHandler) publishEvent(event shared.Event) {
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
