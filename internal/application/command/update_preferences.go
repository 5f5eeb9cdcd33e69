package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PREFERENCES COMMAND
// Updates how a member is displayed on one community's leaderboard.
// ══════════════════════════════════════════════════════════════════════════════

// UpdatePreferencesCommand contains the new display preferences.
type UpdatePreferencesCommand struct {
	UserID   user.DiscordID
	ServerID int64

	ShowName   bool
	ShowHandle bool
}

// Validate validates the command.
func (c UpdatePreferencesCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("update_preferences: user_id is required")
	}
	if c.ServerID < 0 {
		return errors.New("update_preferences: invalid server_id")
	}
	return nil
}

// UpdatePreferencesHandler handles preference updates.
type UpdatePreferencesHandler struct {
	profiles user.ProfileRepository
	logger   *slog.Logger
}

// NewUpdatePreferencesHandler creates a new handler.
func NewUpdatePreferencesHandler(profiles user.ProfileRepository, logger *slog.Logger) *UpdatePreferencesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdatePreferencesHandler{profiles: profiles, logger: logger}
}

// Handle applies the new preferences to the profile.
func (h *UpdatePreferencesHandler) Handle(ctx context.Context, cmd UpdatePreferencesCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("command", "UpdatePreferences", shared.ErrValidation, err.Error(), err)
	}

	p, err := h.profiles.Get(ctx, cmd.UserID, cmd.ServerID)
	if err != nil {
		return err
	}

	p.UpdatePrefs(user.DisplayPrefs{
		ShowName:   cmd.ShowName,
		ShowHandle: cmd.ShowHandle,
	})

	if err := h.profiles.Save(ctx, p); err != nil {
		return shared.WrapError("command", "UpdatePreferences", shared.ErrInternal, "failed to save profile", err)
	}

	h.logger.Debug("preferences updated",
		slog.Int64("user_id", int64(cmd.UserID)),
		slog.Int64("server_id", cmd.ServerID),
	)
	return nil
}
