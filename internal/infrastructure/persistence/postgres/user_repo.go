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
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, handle, easy_count, medium_count, hard_count, total_score, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a newly linked user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, handle, easy_count, medium_count, hard_count, total_score,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		int64(u.ID),
		string(u.Handle),
		u.Counts.Easy,
		u.Counts.Medium,
		u.Counts.Hard,
		int(u.TotalScore),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by Discord ID.
func (r *UserRepository) GetByID(ctx context.Context, id user.DiscordID) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	row := r.conn.QueryRow(ctx, query, int64(id))
	return r.scanUser(row)
}

// GetByHandle returns a user by LeetCode handle.
func (r *UserRepository) GetByHandle(ctx context.Context, handle user.Handle) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE handle = $1`, userColumns)

	row := r.conn.QueryRow(ctx, query, string(handle))
	return r.scanUser(row)
}

// GetAll returns every linked user ordered by score.
func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY total_score DESC, id`, userColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// ListByServer returns users that have a profile in the given community.
// The global community (server id 0) includes every linked user.
func (r *UserRepository) ListByServer(ctx context.Context, serverID int64) ([]*user.User, error) {
	query := `
		SELECT u.id, u.handle, u.easy_count, u.medium_count, u.hard_count,
			   u.total_score, u.created_at, u.updated_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE p.server_id = $1
		ORDER BY u.total_score DESC, u.id
	`

	rows, err := r.conn.Query(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by server: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// SaveStats persists refreshed counters and the derived score.
func (r *UserRepository) SaveStats(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			easy_count = $1,
			medium_count = $2,
			hard_count = $3,
			total_score = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		u.Counts.Easy,
		u.Counts.Medium,
		u.Counts.Hard,
		int(u.TotalScore),
		time.Now().UTC(),
		int64(u.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// Delete removes a user. Profiles cascade at the schema level.
func (r *UserRepository) Delete(ctx context.Context, id user.DiscordID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.conn.Exec(ctx, query, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

// scanUser scans a single user from a row.
func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var id int64
	var handle string
	var totalScore int

	err := row.Scan(
		&id,
		&handle,
		&u.Counts.Easy,
		&u.Counts.Medium,
		&u.Counts.Hard,
		&totalScore,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.ID = user.DiscordID(id)
	u.Handle = user.Handle(handle)
	u.TotalScore = user.Score(totalScore)

	return &u, nil
}

// scanUsers scans multiple users from rows.
func (r *UserRepository) scanUsers(rows pgx.Rows) ([]*user.User, error) {
	var users []*user.User

	for rows.Next() {
		var u user.User
		var id int64
		var handle string
		var totalScore int

		err := rows.Scan(
			&id,
			&handle,
			&u.Counts.Easy,
			&u.Counts.Medium,
			&u.Counts.Hard,
			&totalScore,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.ID = user.DiscordID(id)
		u.Handle = user.Handle(handle)
		u.TotalScore = user.Score(totalScore)

		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}
