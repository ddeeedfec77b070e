package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBundleCache_TTL(t *testing.T) {
	c := NewMemoryBundleCache(10 * time.Millisecond)
	defer c.Close()

	ctx := context.Background()
	key := PerSymptomKey("nausea")
	val := []byte(`{"ctcae":[]}`)

	if err := c.Set(ctx, key, val, 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != `{"ctcae":[]}` {
		t.Fatalf("unexpected value: %q", got)
	}

	// Wait for TTL to expire
	time.Sleep(30 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemoryBundleCache_Flush(t *testing.T) {
	c := NewMemoryBundleCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, CombinedKey([]string{"fatigue", "nausea"}), []byte("a"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, PerSymptomKey("nausea"), []byte("b"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deleted, err := c.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d items", c.Len())
	}
}

func TestEnabled(t *testing.T) {
	if Enabled(NewNoopBundleCache()) {
		t.Fatalf("noop cache must report disabled")
	}
	if Enabled(NewLoggingBundleCache(NewNoopBundleCache())) {
		t.Fatalf("wrapped noop cache must report disabled")
	}

	mem := NewMemoryBundleCache(time.Minute)
	defer mem.Close()
	if !Enabled(mem) {
		t.Fatalf("memory cache must report enabled")
	}
	if !Enabled(NewLoggingBundleCache(mem)) {
		t.Fatalf("wrapped memory cache must report enabled")
	}
}
