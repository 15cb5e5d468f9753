package ratelimit

import "context"

// RateLimiter throttles webhook submissions per source identifier.
type RateLimiter interface {
	Allow(ctx context.Context, source string) (bool, error)
}
