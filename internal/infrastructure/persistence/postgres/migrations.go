// Package postgres implements the PostgreSQL persistence layer for the
// leaderboard service.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

-- Linked LeetCode accounts. The Discord snowflake is the primary key;
-- counts are cumulative totals reported by the judge.
CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    handle VARCHAR(40) NOT NULL UNIQUE,
    easy_count INTEGER NOT NULL DEFAULT 0,
    medium_count INTEGER NOT NULL DEFAULT 0,
    hard_count INTEGER NOT NULL DEFAULT 0,
    total_score INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Constraints for data integrity
    CONSTRAINT valid_counts CHECK (easy_count >= 0 AND medium_count >= 0 AND hard_count >= 0),
    CONSTRAINT valid_score CHECK (total_score >= 0),
    CONSTRAINT valid_handle CHECK (length(handle) > 0)
);

CREATE INDEX IF NOT EXISTS idx_users_handle ON users(handle);
CREATE INDEX IF NOT EXISTS idx_users_total_score ON users(total_score DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE SERVERS AND PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create servers and profiles tables
-- Version: 002

-- Discord guilds tracked by the bot. Row id 0 is the synthetic global
-- community that every linked user belongs to.
CREATE TABLE IF NOT EXISTS servers (
    id BIGINT PRIMARY KEY,
    timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
    notify_channel_ids BIGINT[] NOT NULL DEFAULT '{}',
    last_refresh_started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT 'epoch',
    last_refresh_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT 'epoch',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_server_id CHECK (id >= 0)
);

INSERT INTO servers (id, timezone) VALUES (0, 'UTC') ON CONFLICT (id) DO NOTHING;

-- Per-server membership: display preferences and win counters.
-- The *_win_at columns guard win idempotence: a win for boundary B is
-- credited only when the stored timestamp is strictly before B.
CREATE TABLE IF NOT EXISTS profiles (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    server_id BIGINT NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    show_name BOOLEAN NOT NULL DEFAULT TRUE,
    show_handle BOOLEAN NOT NULL DEFAULT TRUE,
    day_wins INTEGER NOT NULL DEFAULT 0,
    day_win_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT 'epoch',
    week_wins INTEGER NOT NULL DEFAULT 0,
    week_win_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT 'epoch',
    month_wins INTEGER NOT NULL DEFAULT 0,
    month_win_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT 'epoch',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, server_id),

    CONSTRAINT valid_wins CHECK (day_wins >= 0 AND week_wins >= 0 AND month_wins >= 0)
);

CREATE INDEX IF NOT EXISTS idx_profiles_server_id ON profiles(server_id);
`

const migration002Down = `
DROP TABLE IF EXISTS profiles;
DROP TABLE IF EXISTS servers;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create snapshots table
-- Version: 003

-- Cumulative counters frozen at period boundaries (always midnight UTC).
-- The (user_id, boundary_at) unique key makes snapshot writes idempotent.
CREATE TABLE IF NOT EXISTS snapshots (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    boundary_at TIMESTAMP WITH TIME ZONE NOT NULL,
    easy_count INTEGER NOT NULL DEFAULT 0,
    medium_count INTEGER NOT NULL DEFAULT 0,
    hard_count INTEGER NOT NULL DEFAULT 0,
    score INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE (user_id, boundary_at),

    CONSTRAINT valid_snapshot_counts CHECK (easy_count >= 0 AND medium_count >= 0 AND hard_count >= 0),
    CONSTRAINT valid_snapshot_score CHECK (score >= 0)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_user_boundary ON snapshots(user_id, boundary_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_boundary ON snapshots(boundary_at);
`

const migration003Down = `
DROP TABLE IF EXISTS snapshots;
`
