// Package postgres implements the PostgreSQL persistence layer for the
// leaderboard service.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/server"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ServerRepository implements server.Repository for PostgreSQL.
type ServerRepository struct {
	conn *Connection
}

// NewServerRepository creates a new ServerRepository.
func NewServerRepository(conn *Connection) *ServerRepository {
	return &ServerRepository{conn: conn}
}

const serverColumns = `id, timezone, notify_channel_ids, last_refresh_started_at, last_refresh_at, created_at, updated_at`

// Create inserts a community. The global community (id 0) is seeded
// by migration 002, so callers normally never create it.
func (r *ServerRepository) Create(ctx context.Context, s *server.Server) error {
	query := `
		INSERT INTO servers (
			id, timezone, notify_channel_ids, last_refresh_started_at, last_refresh_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Timezone,
		notifyChannels(s),
		s.LastRefreshStartedAt,
		s.LastRefreshAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("server", "Create", shared.ErrAlreadyExists, "server already exists")
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return nil
}

// GetByID returns a community by Discord guild ID.
func (r *ServerRepository) GetByID(ctx context.Context, id int64) (*server.Server, error) {
	query := fmt.Sprintf(`SELECT %s FROM servers WHERE id = $1`, serverColumns)

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanServer(row)
}

// GetAll returns every tracked community including the global one.
func (r *ServerRepository) GetAll(ctx context.Context) ([]*server.Server, error) {
	query := fmt.Sprintf(`SELECT %s FROM servers ORDER BY id`, serverColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query servers: %w", err)
	}
	defer rows.Close()

	var servers []*server.Server
	for rows.Next() {
		var s server.Server
		err := rows.Scan(
			&s.ID,
			&s.Timezone,
			&s.NotifyChannelIDs,
			&s.LastRefreshStartedAt,
			&s.LastRefreshAt,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}
		servers = append(servers, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return servers, nil
}

// Save persists settings and refresh bookkeeping.
func (r *ServerRepository) Save(ctx context.Context, s *server.Server) error {
	query := `
		UPDATE servers SET
			timezone = $1,
			notify_channel_ids = $2,
			last_refresh_started_at = $3,
			last_refresh_at = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		s.Timezone,
		notifyChannels(s),
		s.LastRefreshStartedAt,
		s.LastRefreshAt,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update server: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrServerNotFound
	}

	return nil
}

// Delete removes a community. Profiles cascade at the schema level.
func (r *ServerRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM servers WHERE id = $1`

	result, err := r.conn.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrServerNotFound
	}

	return nil
}

// notifyChannels never hands pgx a nil slice: the column is NOT NULL
// and a nil []int64 encodes as SQL NULL.
func notifyChannels(s *server.Server) []int64 {
	if s.NotifyChannelIDs == nil {
		return []int64{}
	}
	return s.NotifyChannelIDs
}

// scanServer scans a single server from a row.
func (r *ServerRepository) scanServer(row pgx.Row) (*server.Server, error) {
	var s server.Server

	err := row.Scan(
		&s.ID,
		&s.Timezone,
		&s.NotifyChannelIDs,
		&s.LastRefreshStartedAt,
		&s.LastRefreshAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrServerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan server: %w", err)
	}

	return &s, nil
}
