package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

//go:embed scripts/sliding_window.lua
var slidingWindowLua string

// RateLimiter implements domain.RateLimiter with a Redis-backed sliding
// window. The window is a sorted set of request timestamps per key, trimmed
// and counted atomically inside a Lua script.
type RateLimiter struct {
	rdb    *redis.Client
	script *redis.Script
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{
		rdb:    c.Underlying(),
		script: redis.NewScript(slidingWindowLua),
	}
}

// Allow reports whether a request for key fits under limit within window,
// recording the request when it does.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := rl.script.Run(ctx, rl.rdb,
		[]string{"ratelimit:" + key},
		window.Milliseconds(), limit, now, member,
	).Slice()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit %s: %w", key, err)
	}
	if len(res) < 1 {
		return false, fmt.Errorf("redis: rate limit %s: malformed script reply", key)
	}

	allowed, ok := res[0].(int64)
	if !ok {
		return false, fmt.Errorf("redis: rate limit %s: malformed script reply", key)
	}
	return allowed == 1, nil
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
