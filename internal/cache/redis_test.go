package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) *RedisBundleCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBundleCache(client)
}

func TestRedisBundleCache_GetSet(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	key := PerSymptomKey("fatigue")

	_, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss on empty cache")
	}

	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit || string(got) != "payload" {
		t.Fatalf("expected hit with payload, got hit=%v value=%q", hit, got)
	}
}

func TestRedisBundleCache_Flush(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, CombinedKey([]string{"nausea"}), []byte("a"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, PerSymptomKey("nausea"), []byte("b"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// Outside the namespace; must survive the flush.
	if err := c.client.Set(ctx, "session:abc", "x", time.Minute).Err(); err != nil {
		t.Fatalf("seeding foreign key failed: %v", err)
	}

	deleted, err := c.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	if _, hit, _ := c.Get(ctx, PerSymptomKey("nausea")); hit {
		t.Fatalf("expected namespace key to be gone")
	}
	if v, err := c.client.Get(ctx, "session:abc").Result(); err != nil || v != "x" {
		t.Fatalf("foreign key must survive flush, got %q err=%v", v, err)
	}
}

func TestRedisBundleCache_ZeroTTLSkipsWrite(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	key := PerSymptomKey("rash")

	if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Fatalf("ttl<=0 must not persist anything")
	}
}
