// Package redis implements Redis caching for hot leaderboard reads.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache on top of Redis.
// Whole rankings are stored as JSON under keys of the form
// "leaderboard:<server>:<period>:<sort>:<interval>"; pagination slices
// the cached list, so the page number is never part of the key.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// Get returns a cached ranking. A miss is reported as an error so that
// callers fall through to recomputation.
func (c *LeaderboardCache) Get(ctx context.Context, key string) (*leaderboard.Ranking, error) {
	var ranking leaderboard.Ranking
	if err := c.cache.Get(ctx, key, &ranking); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("leaderboard cache get: %w", err)
	}

	return &ranking, nil
}

// Set stores a ranking with the given TTL.
func (c *LeaderboardCache) Set(ctx context.Context, key string, r *leaderboard.Ranking, ttl time.Duration) error {
	if r == nil {
		return ErrCacheNilValue
	}

	if err := c.cache.Set(ctx, key, r, ttl); err != nil {
		return fmt.Errorf("leaderboard cache set: %w", err)
	}

	return nil
}

// Invalidate drops every cached ranking of a community. Called after a
// period close rewrites win counters and snapshots.
func (c *LeaderboardCache) Invalidate(ctx context.Context, serverID int64) error {
	pattern := fmt.Sprintf("%s%d:*", PrefixLeaderboard, serverID)

	if err := c.cache.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("leaderboard cache invalidate: %w", err)
	}

	return nil
}
