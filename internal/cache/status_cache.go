package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/config"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/redis/go-redis/v9"
)

const dataStatusKey = "retail_metrics:data_status"

// DataStatusCache caches the dataset status (record count, loaded flag) so
// the status endpoint does not hit the store on every poll. Metric results
// are never cached; every metric call recomputes from the record set.
type DataStatusCache interface {
	Get(ctx context.Context) (domain.DataStatus, bool, error)
	Set(ctx context.Context, status domain.DataStatus) error
	Invalidate(ctx context.Context) error
}

type redisDataStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDataStatusCache struct{}

func NewDataStatusCache(cfg config.CacheConfig) (DataStatusCache, error) {
	if !cfg.Enabled {
		return &noopDataStatusCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDataStatusCache{client: client, ttl: ttl}, nil
}

func NewNoopDataStatusCache() DataStatusCache {
	return &noopDataStatusCache{}
}

func (c *redisDataStatusCache) Get(ctx context.Context) (domain.DataStatus, bool, error) {
	payload, err := c.client.Get(ctx, dataStatusKey).Bytes()
	if err == redis.Nil {
		return domain.DataStatus{}, false, nil
	}
	if err != nil {
		return domain.DataStatus{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var status domain.DataStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return domain.DataStatus{}, false, fmt.Errorf("decode data status cache: %w", err)
	}
	return status, true, nil
}

func (c *redisDataStatusCache) Set(ctx context.Context, status domain.DataStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode data status cache: %w", err)
	}
	if err := c.client.Set(ctx, dataStatusKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDataStatusCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dataStatusKey).Err()
}

func (n *noopDataStatusCache) Get(ctx context.Context) (domain.DataStatus, bool, error) {
	return domain.DataStatus{}, false, nil
}

func (n *noopDataStatusCache) Set(ctx context.Context, status domain.DataStatus) error {
	return nil
}

func (n *noopDataStatusCache) Invalidate(ctx context.Context) error {
	return nil
}
