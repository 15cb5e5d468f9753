package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)
	cache, err := NewCache(rdb)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	ctx := context.Background()

	_, found, err := cache.Get(ctx, "dashboard:summary")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("empty cache should report not found")
	}

	if err := cache.Set(ctx, "dashboard:summary", `{"activeBatches":3}`, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := cache.Get(ctx, "dashboard:summary")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("cached value should be found")
	}
	if value != `{"activeBatches":3}` {
		t.Fatalf("Get() = %q", value)
	}
}

func TestCacheRequiresClient(t *testing.T) {
	t.Parallel()

	if _, err := NewCache(nil); err == nil {
		t.Fatal("NewCache(nil) should fail")
	}
}
