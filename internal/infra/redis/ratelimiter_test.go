package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisRateLimiterAllow(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_000, 0)
	limiter, err := newRedisRateLimiter(rdb, 2, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("first call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("second call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("third call should be rejected by rate limit")
	}

	now = now.Add(time.Minute)
	allowed, err = limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("new minute window should allow call")
	}
}

func TestRedisRateLimiterAllowPerSource(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_100, 0)
	limiter, err := newRedisRateLimiter(rdb, 1, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow(typeform) error = %v", err)
	}
	if !allowed {
		t.Fatal("typeform should be allowed on first request")
	}

	allowed, err = limiter.Allow(context.Background(), "google-forms")
	if err != nil {
		t.Fatalf("Allow(google-forms) error = %v", err)
	}
	if !allowed {
		t.Fatal("google-forms should be allowed on first request")
	}

	allowed, err = limiter.Allow(context.Background(), "typeform")
	if err != nil {
		t.Fatalf("Allow(typeform) error = %v", err)
	}
	if allowed {
		t.Fatal("typeform second request should be rejected")
	}
}

func TestRedisRateLimiterEmptySourceFallsBack(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_200, 0)
	limiter, err := newRedisRateLimiter(rdb, 1, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("blank source should share the unknown bucket and be allowed once")
	}

	allowed, err = limiter.Allow(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("blank and unknown sources should share one bucket")
	}
}

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}
