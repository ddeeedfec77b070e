package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBundleCache is an in-process BundleCache for development and tests.
type MemoryBundleCache struct {
	mu              sync.RWMutex
	items           map[string]memoryEntry
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

// NewMemoryBundleCache creates an in-memory cache. A cleanup interval <= 0
// falls back to 5 minutes.
func NewMemoryBundleCache(cleanupInterval time.Duration) *MemoryBundleCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	c := &MemoryBundleCache{
		items:           make(map[string]memoryEntry),
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	//background cleanup routine
	go c.cleanupExpired()

	return c
}

// Get retrieves a value from the cache.
func (c *MemoryBundleCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		if e, exists := c.items[key]; exists && now.After(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores a value with a TTL. A ttl <= 0 removes the entry.
func (c *MemoryBundleCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil
	}

	// Copy to decouple from caller's buffer
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()

	return nil
}

// Flush removes every key in the retrieval namespace.
func (c *MemoryBundleCache) Flush(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for k := range c.items {
		if strings.HasPrefix(k, Namespace+":") {
			delete(c.items, k)
			deleted++
		}
	}
	return deleted, nil
}

// cleanupExpired runs periodically to remove expired entries.
func (c *MemoryBundleCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, v := range c.items {
				if now.After(v.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine. Call this on shutdown or in tests.
func (c *MemoryBundleCache) Close() error {
	c.cleanupOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}

// Len returns the number of items currently in the cache.
func (c *MemoryBundleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
