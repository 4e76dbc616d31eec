// Package ratelimit throttles anonymous endpoints with Redis fixed-window
// counters.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/go-todo-api/internal/config"
)

const keyPrefix = "ratelimit"

// Limiter counts attempts per purpose and subject (usually a client IP).
type Limiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLimiter(client *redis.Client, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
	}
}

// Allow records an attempt and reports whether it is within the limit.
// The window starts with the first attempt and is not extended by later ones.
func (l *Limiter) Allow(ctx context.Context, purpose, subject string) (bool, error) {
	key := fmt.Sprintf("%s:%s:%s", keyPrefix, purpose, subject)

	// INCR and EXPIRE NX run in one MULTI so a counter never outlives its window
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	return incr.Val() <= int64(l.maxAttempts), nil
}
