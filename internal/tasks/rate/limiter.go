package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window    time.Duration // e.g., 1 minute, 1 hour
	MaxEvents int           // max events per window
}

// ActionConfig names a rate-limited action, e.g. session creation or brand
// switching.
type ActionConfig struct {
	Name      string
	RateLimit RateLimit
}

// ActionRateLimiter is a sliding-window limiter keyed per user. It throttles
// session churn and brand-switch storms without touching the permission
// decision itself.
type ActionRateLimiter struct {
	redis  *redis.Client
	config ActionConfig
}

func NewActionRateLimiter(redis *redis.Client, config ActionConfig) *ActionRateLimiter {
	return &ActionRateLimiter{
		redis:  redis,
		config: config,
	}
}

func (arl *ActionRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("action_rate_limit:%s:%s", arl.config.Name, identifier)

	pipe := arl.redis.Pipeline()
	now := time.Now().Unix()
	windowStart := now - int64(arl.config.RateLimit.Window.Seconds())

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	pipe.ZCard(ctx, key)

	// Add new entry
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})

	// Set expiration
	pipe.Expire(ctx, key, arl.config.RateLimit.Window*2)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	count := results[1].(*redis.IntCmd).Val()
	return count <= int64(arl.config.RateLimit.MaxEvents), nil
}
