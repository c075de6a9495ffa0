// Package cache adds a Redis read-through layer over the directory's
// candidate pool. Proximity lookups hit the pool on every query, while the
// pool itself changes slowly, so a short TTL takes most of that load off
// PostgreSQL. Credential checks and snapshots stay uncached; they gate
// authorization and must not serve stale data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"peakform/internal/directory"
	id "peakform/pkg/domain"
)

const (
	candidatesKey = "directory:candidates"

	defaultTTL = 30 * time.Second
)

// CachedDirectory wraps a Directory with a Redis-backed candidate cache.
// Cache failures degrade to the underlying store, never to an error.
type CachedDirectory struct {
	inner  directory.Directory
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a CachedDirectory.
type Option func(*CachedDirectory)

// WithTTL overrides the candidate cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedDirectory) {
		c.ttl = ttl
	}
}

// New wraps inner with a candidate cache. A nil client disables caching.
func New(inner directory.Directory, client *redis.Client, logger *slog.Logger, opts ...Option) *CachedDirectory {
	c := &CachedDirectory{
		inner:  inner,
		client: client,
		ttl:    defaultTTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedDirectory) IsApprovedGuide(ctx context.Context, userID id.UserID) (bool, error) {
	return c.inner.IsApprovedGuide(ctx, userID)
}

func (c *CachedDirectory) Snapshot(ctx context.Context, userID id.UserID) (*directory.AthleteSnapshot, error) {
	return c.inner.Snapshot(ctx, userID)
}

func (c *CachedDirectory) Candidates(ctx context.Context) ([]directory.Candidate, error) {
	if c.client == nil {
		return c.inner.Candidates(ctx)
	}

	raw, err := c.client.Get(ctx, candidatesKey).Bytes()
	if err == nil {
		var cached []directory.Candidate
		unmarshalErr := json.Unmarshal(raw, &cached)
		if unmarshalErr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding corrupt candidate cache entry", "error", unmarshalErr)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("candidate cache read failed", "error", err)
	}

	candidates, err := c.inner.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(candidates); err == nil {
		if err := c.client.Set(ctx, candidatesKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("candidate cache write failed", "error", err)
		}
	}
	return candidates, nil
}

// Invalidate drops the cached candidate pool, forcing the next query to read
// through. Call after profile writes that change guide eligibility.
func (c *CachedDirectory) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, candidatesKey).Err()
}
