package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBundleCache implements BundleCache using Redis.
type RedisBundleCache struct {
	client *redis.Client
}

// NewRedisBundleCache creates a Redis-backed cache.
func NewRedisBundleCache(client *redis.Client) *RedisBundleCache {
	return &RedisBundleCache{client: client}
}

// Get retrieves a value from Redis.
// On Redis error, it returns (nil, false, err) so the caller can log and
// treat it as a miss.
func (c *RedisBundleCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context error: %w", err)
	}

	res, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		// Key does not exist – a clean miss.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	return res, true, nil
}

// Set stores a value in Redis with TTL.
// If ttl <= 0, it does nothing (no caching).
func (c *RedisBundleCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Flush deletes every key in the retrieval namespace. Run after new
// documents are ingested into the vector index so stale bundles don't mask
// them for a full TTL.
func (c *RedisBundleCache) Flush(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	deleted := 0
	iter := c.client.Scan(ctx, 0, Namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("redis del failed: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan failed: %w", err)
	}
	return deleted, nil
}

// Ping checks if the Redis connection is healthy. Called once at startup;
// a failure downgrades the process to the no-op cache.
func (c *RedisBundleCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return c.client.Ping(ctx).Err()
}
