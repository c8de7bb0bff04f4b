// Package ratelimit implements fixed-window request counting keyed by client
// identity. Windows are aligned to wall-clock boundaries: the window for an
// instant t is t - (t mod windowSeconds), and every counter belongs to
// exactly one window.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// counter tracks attempts within a single window. The window field is fixed
// at creation; a window rollover replaces the whole counter instead of
// resetting it in place.
type counter struct {
	window int64
	hits   atomic.Int64
}

// FixedWindow is an in-process fixed-window limiter. The increment-or-reset
// step is a per-key compare-and-swap on a concurrent map, so concurrent
// attempts for the same key never under- or over-count across a window
// boundary.
type FixedWindow struct {
	counters sync.Map // string → *counter
	max      int64
	window   int64 // seconds
	now      func() time.Time

	lastSweep atomic.Int64
}

// Option customises a FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the limiter's time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) { l.now = now }
}

// NewFixedWindow builds a limiter allowing maxAttempts per key per
// windowSeconds. Non-positive arguments fall back to 5 attempts per 60s.
func NewFixedWindow(maxAttempts, windowSeconds int, opts ...Option) *FixedWindow {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	l := &FixedWindow{
		max:    int64(maxAttempts),
		window: int64(windowSeconds),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one attempt for key and reports whether it is within the
// limit for the current window. The error return exists to satisfy the
// limiter port shared with the redis-backed implementation; it is always nil
// here.
func (l *FixedWindow) Allow(_ context.Context, key string) (bool, error) {
	w := l.currentWindow()
	l.maybeSweep(w)

	for {
		v, loaded := l.counters.Load(key)
		if !loaded {
			fresh := &counter{window: w}
			fresh.hits.Store(1)
			if _, raced := l.counters.LoadOrStore(key, fresh); raced {
				continue
			}
			return 1 <= l.max, nil
		}

		c := v.(*counter)
		if c.window != w {
			// Stale window: replace the counter atomically rather than
			// resetting it, so a racing increment on the old counter is lost
			// with the old window instead of leaking into the new one.
			fresh := &counter{window: w}
			fresh.hits.Store(1)
			if !l.counters.CompareAndSwap(key, v, fresh) {
				continue
			}
			return 1 <= l.max, nil
		}

		return c.hits.Add(1) <= l.max, nil
	}
}

// SecondsUntilReset reports how long until the current window rolls over.
func (l *FixedWindow) SecondsUntilReset() int {
	remaining := l.window - l.now().Unix()%l.window
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining)
}

func (l *FixedWindow) currentWindow() int64 {
	now := l.now().Unix()
	return now - now%l.window
}

// maybeSweep drops counters that lapsed more than one full window ago, once
// per window rollover. Bounds memory to roughly the keys seen in the last two
// windows under adversarial key churn.
func (l *FixedWindow) maybeSweep(currentWindow int64) {
	last := l.lastSweep.Load()
	if last == currentWindow || !l.lastSweep.CompareAndSwap(last, currentWindow) {
		return
	}
	cutoff := currentWindow - l.window
	l.counters.Range(func(key, value any) bool {
		if value.(*counter).window < cutoff {
			l.counters.Delete(key)
		}
		return true
	})
}
