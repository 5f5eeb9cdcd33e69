// Package postgres implements the PostgreSQL persistence layer for the
// leaderboard service.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository implements leaderboard.SnapshotRepository for PostgreSQL.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

const snapshotColumns = `id, user_id, boundary_at, easy_count, medium_count, hard_count, score, created_at`

// Insert writes a boundary snapshot. The (user_id, boundary_at) unique key
// turns a re-run of the same period close into ErrDuplicateSnapshot.
func (r *SnapshotRepository) Insert(ctx context.Context, s *leaderboard.Snapshot) error {
	query := `
		INSERT INTO snapshots (
			id, user_id, boundary_at, easy_count, medium_count, hard_count,
			score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		int64(s.UserID),
		s.BoundaryAt,
		s.Counts.Easy,
		s.Counts.Medium,
		s.Counts.Hard,
		int(s.Score),
		s.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateSnapshot
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// FindAt returns the snapshot taken exactly at the given boundary.
func (r *SnapshotRepository) FindAt(ctx context.Context, userID user.DiscordID, at time.Time) (*leaderboard.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM snapshots
		WHERE user_id = $1 AND boundary_at = $2
	`, snapshotColumns)

	row := r.conn.QueryRow(ctx, query, int64(userID), at.UTC())
	return r.scanSnapshot(row)
}

// FindAtOrAfter returns the earliest snapshot at or after the given boundary.
func (r *SnapshotRepository) FindAtOrAfter(ctx context.Context, userID user.DiscordID, at time.Time) (*leaderboard.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM snapshots
		WHERE user_id = $1 AND boundary_at >= $2
		ORDER BY boundary_at ASC
		LIMIT 1
	`, snapshotColumns)

	row := r.conn.QueryRow(ctx, query, int64(userID), at.UTC())
	return r.scanSnapshot(row)
}

// DeleteByUser removes all snapshots of a user. Called on unlink.
func (r *SnapshotRepository) DeleteByUser(ctx context.Context, userID user.DiscordID) error {
	query := `DELETE FROM snapshots WHERE user_id = $1`

	if _, err := r.conn.Exec(ctx, query, int64(userID)); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}

	return nil
}

// scanSnapshot scans a single snapshot from a row.
func (r *SnapshotRepository) scanSnapshot(row pgx.Row) (*leaderboard.Snapshot, error) {
	var s leaderboard.Snapshot
	var userID int64
	var score int

	err := row.Scan(
		&s.ID,
		&userID,
		&s.BoundaryAt,
		&s.Counts.Easy,
		&s.Counts.Medium,
		&s.Counts.Hard,
		&score,
		&s.CreatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	s.UserID = user.DiscordID(userID)
	s.Score = user.Score(score)

	return &s, nil
}
