package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/trackademy/batchline/internal/ratelimit"
)

const (
	defaultLimitPerMin int64 = 60
	windowSeconds            = 60
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter is a distributed fixed-window rate limiter keyed by
// webhook source, one window per minute.
type RedisRateLimiter struct {
	client      *goredis.Client
	limitPerMin int64
	now         func() time.Time
	script      *goredis.Script
}

func NewRedisRateLimiter(client *goredis.Client, limitPerMin int) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, int64(limitPerMin), time.Now)
}

func newRedisRateLimiter(
	client *goredis.Client,
	limitPerMin int64,
	nowFn func() time.Time,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerMin <= 0 {
		limitPerMin = defaultLimitPerMin
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RedisRateLimiter{
		client:      client,
		limitPerMin: limitPerMin,
		now:         nowFn,
		script:      allowScript,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, source string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalizedSource := strings.ToLower(strings.TrimSpace(source))
	if normalizedSource == "" {
		normalizedSource = "unknown"
	}

	if ctx == nil {
		ctx = context.Background()
	}

	window := r.now().UTC().Unix() / windowSeconds
	key := fmt.Sprintf("webhook:ratelimit:%s:%d", normalizedSource, window)
	result, err := r.script.Run(ctx, r.client, []string{key}, r.limitPerMin, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}
