package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	analyticsKeyPrefix     = "analytics:"
	analyticsScanBatchSize = 100
	defaultAnalyticsTTL    = time.Hour
)

// AnalyticsCache stores computed analytics reports as JSON under keys
// produced by BuildKey.
type AnalyticsCache interface {
	// Get decodes the entry at key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
}

type noopAnalyticsCache struct{}

// NewAnalyticsCache connects to Redis when caching is enabled and falls back
// to a cache that never hits otherwise.
func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, err := openRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{client: client}, nil
}

func NewRedisAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &redisAnalyticsCache{client: client}
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode analytics cache %s: %w", key, err)
	}
	return true, nil
}

// Set overwrites any previous entry at key.
func (c *redisAnalyticsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultAnalyticsTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode analytics cache %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll removes every analytics entry in batches while scanning.
// Keys outside the analytics prefix are left alone.
func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, analyticsKeyPrefix+"*", analyticsScanBatchSize).Iterator()

	batch := make([]string, 0, analyticsScanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == analyticsScanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}

func (n *noopAnalyticsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (n *noopAnalyticsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// BuildKey derives the cache key of an operation from its parameters. The
// parameter order does not matter.
func BuildKey(operation string, params map[string]string) string {
	return analyticsKeyPrefix + operation + ":" + paramsHash(params)
}

func paramsHash(params map[string]string) string {
	if len(params) == 0 {
		return "default"
	}

	parts := make([]string, 0, len(params))
	for k, v := range params {
		parts = append(parts, strings.ToLower(strings.TrimSpace(k))+"="+strings.TrimSpace(v))
	}
	sort.Strings(parts)

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
