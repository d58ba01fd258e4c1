package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	ingestLockKey        = "retail_metrics:ingest_lock"
	defaultIngestLockTTL = 5 * time.Minute
)

// IngestLock serializes bulk loads across loader processes. Replace-all
// ingestion must not interleave with another load; readers are protected by
// the store's transaction, loaders by this lock.
type IngestLock interface {
	// Acquire takes the lock. It returns false without error when another
	// load currently holds it.
	Acquire(ctx context.Context, owner string) (bool, error)
	// Release frees the lock if the owner still holds it.
	Release(ctx context.Context, owner string) error
}

type redisIngestLock struct {
	client *redis.Client
	ttl    time.Duration
}

type noopIngestLock struct{}

// NewIngestLock builds a redis-backed lock, or a noop when caching is
// disabled (single-loader deployments).
func NewIngestLock(cfg config.CacheConfig) (IngestLock, error) {
	if !cfg.Enabled {
		return &noopIngestLock{}, nil
	}

	client, _, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.IngestLockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultIngestLockTTL
	}

	return &redisIngestLock{client: client, ttl: ttl}, nil
}

// NewNoopIngestLock returns a lock that always grants.
func NewNoopIngestLock() IngestLock {
	return &noopIngestLock{}
}

func (l *redisIngestLock) Acquire(ctx context.Context, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, ingestLockKey, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (l *redisIngestLock) Release(ctx context.Context, owner string) error {
	// Only the owner may release; a stale lock expires via TTL.
	current, err := l.client.Get(ctx, ingestLockKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if current != owner {
		return nil
	}
	return l.client.Del(ctx, ingestLockKey).Err()
}

func (n *noopIngestLock) Acquire(ctx context.Context, owner string) (bool, error) {
	return true, nil
}

func (n *noopIngestLock) Release(ctx context.Context, owner string) error {
	return nil
}
