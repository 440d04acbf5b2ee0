package data

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// DefaultStatusTTL bounds staleness on the status polling hot path.
// Running jobs update progress far more often than clients poll, so a
// short window keeps Postgres off the read path without lying for long.
const DefaultStatusTTL = 2 * time.Second

// RedisStatusCache implements the StatusCache interface using Redis.
// Cache failures are logged and swallowed: status reads always have
// Postgres as source of truth behind them.
type RedisStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStatusCache creates a new RedisStatusCache. A non-positive
// ttl falls back to DefaultStatusTTL.
func NewRedisStatusCache(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisStatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStatusCache{client: client, ttl: ttl, logger: logger}
}

func statusKey(jobID string) string {
	return "secretary:job-status:" + jobID
}

// GetStatus returns the cached status snapshot for a job, if present.
func (c *RedisStatusCache) GetStatus(ctx context.Context, jobID string) (*model.JobStatusResponse, bool) {
	raw, err := c.client.Get(ctx, statusKey(jobID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "status cache get failed", "job_id", jobID, "error", err)
		}
		return nil, false
	}

	var snap model.JobStatusResponse
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.logger.WarnContext(ctx, "status cache entry corrupt", "job_id", jobID, "error", err)
		return nil, false
	}
	return &snap, true
}

// PutStatus caches a status snapshot under the configured TTL.
func (c *RedisStatusCache) PutStatus(ctx context.Context, snap *model.JobStatusResponse) {
	if snap == nil || snap.ID == "" {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		c.logger.WarnContext(ctx, "status cache marshal failed", "job_id", snap.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, statusKey(snap.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "status cache set failed", "job_id", snap.ID, "error", err)
	}
}

// Invalidate drops the cached snapshot after a state transition so the
// next read observes it immediately instead of waiting out the TTL.
func (c *RedisStatusCache) Invalidate(ctx context.Context, jobID string) {
	if err := c.client.Del(ctx, statusKey(jobID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "status cache invalidate failed", "job_id", jobID, "error", err)
	}
}

// RedisConfig holds configuration for the Redis connection.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// NewRedisClient creates a new Redis client with the given configuration.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
