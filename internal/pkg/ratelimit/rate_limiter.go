// internal/pkg/ratelimit/rate_limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter on Redis INCR/EXPIRE.
type RateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRateLimiter(client *redis.Client, prefix string) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix}
}

// Allow counts one attempt against key and reports whether it is within max
// attempts for the window, together with the attempts left.
func (r *RateLimiter) Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, int64, error) {
	k := r.key(key)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= max, remaining, nil
}

// Refund gives back one attempt counted by Allow, for work that failed on our side.
func (r *RateLimiter) Refund(ctx context.Context, key string) error {
	k := r.key(key)

	count, err := r.client.Decr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to refund rate limit: %w", err)
	}
	// The window expired in between; drop the key DECR just created.
	if count <= 0 {
		if err := r.client.Del(ctx, k).Err(); err != nil {
			return fmt.Errorf("failed to clear rate limit: %w", err)
		}
	}
	return nil
}

func (r *RateLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", r.prefix, key)
}
