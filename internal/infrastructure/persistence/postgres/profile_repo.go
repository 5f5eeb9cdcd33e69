// Package postgres implements the PostgreSQL persistence layer for the
// leaderboard service.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements user.ProfileRepository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

const profileColumns = `user_id, server_id, show_name, show_handle,
	day_wins, day_win_at, week_wins, week_win_at, month_wins, month_win_at,
	created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a membership profile.
func (r *ProfileRepository) Create(ctx context.Context, p *user.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, server_id, show_name, show_handle,
			day_wins, day_win_at, week_wins, week_win_at, month_wins, month_win_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		int64(p.UserID),
		p.ServerID,
		p.Prefs.ShowName,
		p.Prefs.ShowHandle,
		p.Wins.Day.Count,
		p.Wins.Day.UpdatedAt,
		p.Wins.Week.Count,
		p.Wins.Week.UpdatedAt,
		p.Wins.Month.Count,
		p.Wins.Month.UpdatedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrProfileAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// Get returns the profile for a user within a community.
func (r *ProfileRepository) Get(ctx context.Context, userID user.DiscordID, serverID int64) (*user.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE user_id = $1 AND server_id = $2
	`, profileColumns)

	row := r.conn.QueryRow(ctx, query, int64(userID), serverID)
	return r.scanProfile(row)
}

// ListByServer returns all membership profiles of a community.
func (r *ProfileRepository) ListByServer(ctx context.Context, serverID int64) ([]*user.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE server_id = $1
		ORDER BY user_id
	`, profileColumns)

	rows, err := r.conn.Query(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	return r.scanProfiles(rows)
}

// Save persists preference and win counter changes.
func (r *ProfileRepository) Save(ctx context.Context, p *user.Profile) error {
	query := `
		UPDATE profiles SET
			show_name = $1,
			show_handle = $2,
			day_wins = $3,
			day_win_at = $4,
			week_wins = $5,
			week_win_at = $6,
			month_wins = $7,
			month_win_at = $8,
			updated_at = $9
		WHERE user_id = $10 AND server_id = $11
	`

	result, err := r.conn.Exec(ctx, query,
		p.Prefs.ShowName,
		p.Prefs.ShowHandle,
		p.Wins.Day.Count,
		p.Wins.Day.UpdatedAt,
		p.Wins.Week.Count,
		p.Wins.Week.UpdatedAt,
		p.Wins.Month.Count,
		p.Wins.Month.UpdatedAt,
		time.Now().UTC(),
		int64(p.UserID),
		p.ServerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}

// CreditWin atomically increments the win counter for the given period kind.
// The guard `*_win_at < boundary` makes the operation idempotent: re-running
// a period close cannot credit the same boundary twice.
func (r *ProfileRepository) CreditWin(ctx context.Context, userID user.DiscordID, serverID int64, kind string, boundary time.Time) error {
	var winCol, atCol string
	switch kind {
	case "day":
		winCol, atCol = "day_wins", "day_win_at"
	case "week":
		winCol, atCol = "week_wins", "week_win_at"
	case "month":
		winCol, atCol = "month_wins", "month_win_at"
	default:
		return shared.NewDomainError("profile", "CreditWin", shared.ErrInvalidInput,
			fmt.Sprintf("unknown period kind %q", kind))
	}

	query := fmt.Sprintf(`
		UPDATE profiles SET
			%s = %s + 1,
			%s = $3,
			updated_at = NOW()
		WHERE user_id = $1 AND server_id = $2 AND %s < $3
	`, winCol, winCol, atCol, atCol)

	result, err := r.conn.Exec(ctx, query, int64(userID), serverID, boundary.UTC())
	if err != nil {
		return fmt.Errorf("failed to credit win: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the profile is missing or the boundary was already counted.
		if _, getErr := r.Get(ctx, userID, serverID); getErr != nil {
			return getErr
		}
		// The interface promises this sentinel; the orchestrator treats
		// it as a benign re-run, not a failure.
		return user.ErrWinAlreadyCounted
	}

	return nil
}

// Delete removes a membership profile.
func (r *ProfileRepository) Delete(ctx context.Context, userID user.DiscordID, serverID int64) error {
	query := `DELETE FROM profiles WHERE user_id = $1 AND server_id = $2`

	result, err := r.conn.Exec(ctx, query, int64(userID), serverID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

// scanProfile scans a single profile from a row.
func (r *ProfileRepository) scanProfile(row pgx.Row) (*user.Profile, error) {
	var p user.Profile
	var userID int64

	err := row.Scan(
		&userID,
		&p.ServerID,
		&p.Prefs.ShowName,
		&p.Prefs.ShowHandle,
		&p.Wins.Day.Count,
		&p.Wins.Day.UpdatedAt,
		&p.Wins.Week.Count,
		&p.Wins.Week.UpdatedAt,
		&p.Wins.Month.Count,
		&p.Wins.Month.UpdatedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	p.UserID = user.DiscordID(userID)

	return &p, nil
}

// scanProfiles scans multiple profiles from rows.
func (r *ProfileRepository) scanProfiles(rows pgx.Rows) ([]*user.Profile, error) {
	var profiles []*user.Profile

	for rows.Next() {
		var p user.Profile
		var userID int64

		err := rows.Scan(
			&userID,
			&p.ServerID,
			&p.Prefs.ShowName,
			&p.Prefs.ShowHandle,
			&p.Wins.Day.Count,
			&p.Wins.Day.UpdatedAt,
			&p.Wins.Week.Count,
			&p.Wins.Week.UpdatedAt,
			&p.Wins.Month.Count,
			&p.Wins.Month.UpdatedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		p.UserID = user.DiscordID(userID)
		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return profiles, nil
}
