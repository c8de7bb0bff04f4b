package ports

import "context"

// LoginRateLimiter bounds attempts per client key within fixed time windows.
// Allow returns false once the key has exhausted its attempts for the current
// window; an error means the backing store is unavailable, which callers
// should treat as allow (fail-open) rather than rejecting logins.
type LoginRateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	SecondsUntilReset() int
}
