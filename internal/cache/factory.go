package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string // "none", "memory" or "redis"
	TTL     time.Duration
}

func NewBundleCache(cfg Config, redisClient *redis.Client) BundleCache {
	switch cfg.Backend {
	case "redis":
		return NewRedisBundleCache(redisClient)
	case "memory":
		// Entry TTLs come per Set call; 0 picks the default sweep interval.
		return NewMemoryBundleCache(0)
	default:
		return NewNoopBundleCache()
	}
}
