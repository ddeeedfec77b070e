package cache

import (
	"context"
	"time"
)

// BundleCache stores serialized retrieval bundles keyed by the builders in
// keys.go. Implemented by the memory cache (dev/tests), the Redis cache
// (prod), and the no-op cache (caching disabled).
type BundleCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Flush removes every key in this cache's namespace and returns how many
	// entries were deleted. Used after corpus reingestion.
	Flush(ctx context.Context) (int, error)
}

// Enabled reports whether c actually persists entries. The no-op backend
// opts out through the unexported capability method; everything else is
// assumed live. Retrieval uses this to decide between the cached policy and
// direct full-set retrieval.
func Enabled(c BundleCache) bool {
	if c == nil {
		return false
	}
	if d, ok := c.(interface{ disabled() bool }); ok {
		return !d.disabled()
	}
	return true
}
