package cache

import (
	"context"
	"time"
)

// NoopBundleCache is the backend selected when caching is not configured or
// the Redis ping failed at startup. Every read is a miss and every write is
// discarded, so retrieval degrades to direct oracle calls without nil checks
// scattered through the core.
type NoopBundleCache struct{}

func NewNoopBundleCache() NoopBundleCache { return NoopBundleCache{} }

func (NoopBundleCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopBundleCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopBundleCache) Flush(context.Context) (int, error) {
	return 0, nil
}

func (NoopBundleCache) disabled() bool { return true }
