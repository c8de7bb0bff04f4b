package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts login attempts in Redis so the limit holds across
// replicas. Each (key, window) pair maps to one Redis key that is INCRed per
// attempt and expires shortly after the window lapses, which gives the same
// replace-on-rollover semantics as the in-process limiter.
// Key format: ratelimit:<key>:<window_start_unix>
type FixedWindowLimiter struct {
	client *redis.Client
	max    int64
	window int64 // seconds
	now    func() time.Time
}

// NewFixedWindowLimiter wraps the given client. Non-positive arguments fall
// back to 5 attempts per 60s.
func NewFixedWindowLimiter(client *redis.Client, maxAttempts, windowSeconds int) *FixedWindowLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &FixedWindowLimiter{
		client: client,
		max:    int64(maxAttempts),
		window: int64(windowSeconds),
		now:    time.Now,
	}
}

// Allow records one attempt and reports whether the key is within the limit
// for the current window. Redis errors are returned so the caller can decide
// to fail open.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := l.now().Unix()
	windowStart -= windowStart % l.window

	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart)

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		// First attempt in this window: expire the key one window after the
		// boundary so stale windows clean themselves up.
		l.client.Expire(ctx, redisKey, time.Duration(2*l.window)*time.Second)
	}
	return n <= l.max, nil
}

// SecondsUntilReset reports how long until the current window rolls over.
func (l *FixedWindowLimiter) SecondsUntilReset() int {
	remaining := l.window - l.now().Unix()%l.window
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining)
}
