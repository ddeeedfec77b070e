package cache

import (
	"context"
	"time"

	"oncolife-rag-gateway/internal/metrics"
	"oncolife-rag-gateway/pkg/logging"

	"go.uber.org/zap"
)

// LoggingBundleCache wraps a BundleCache with logging + metrics.
type LoggingBundleCache struct {
	inner BundleCache
}

// NewLoggingBundleCache returns a cache that logs and records metrics.
func NewLoggingBundleCache(inner BundleCache) BundleCache {
	return &LoggingBundleCache{inner: inner}
}

func (c *LoggingBundleCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	parts, parsed := parseKey(key)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		if parsed {
			switch parts.tier {
			case "combined":
				metrics.CombinedHitsTotal.Inc()
			case "per_symptom":
				metrics.PerSymptomHitsTotal.Inc()
			}
		}
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}
	if parsed {
		fields = append(fields,
			zap.String("cache_tier", parts.tier),
			zap.String("corpus_tag", parts.corpusTag),
			zap.String("hash", parts.hash),
			zap.String("schema_version", parts.version),
		)
	}

	if err != nil {
		logger.Error("bundle_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("bundle_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingBundleCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Int("bytes", len(value)),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", latencyMs),
	}
	if parts, ok := parseKey(key); ok {
		fields = append(fields, zap.String("cache_tier", parts.tier))
	}

	if err != nil {
		logger.Error("bundle_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("bundle_cache_set", fields...)
	}

	return err
}

func (c *LoggingBundleCache) Flush(ctx context.Context) (int, error) {
	deleted, err := c.inner.Flush(ctx)
	logger := logging.L(ctx)
	if err != nil {
		logger.Error("bundle_cache_flush", zap.Int("deleted", deleted), zap.Error(err))
	} else {
		logger.Info("bundle_cache_flush", zap.Int("deleted", deleted))
	}
	return deleted, err
}

// disabled forwards the capability check to the wrapped backend.
func (c *LoggingBundleCache) disabled() bool { return !Enabled(c.inner) }
