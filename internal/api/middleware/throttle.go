package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const throttleCleanupInterval = 5 * time.Minute

// Throttle applies a coarse per-IP token-bucket limit to the whole API,
// separate from the login fixed-window limiter. It sheds abusive traffic
// before it reaches handlers; legitimate bursts up to burst pass untouched.
func Throttle(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	t := &throttler{
		limit:       rate.Limit(requestsPerSecond),
		burst:       burst,
		lastCleanup: time.Now(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !t.limiterFor(c.RealIP()).Allow() {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "too many requests",
				})
			}
			return next(c)
		}
	}
}

type throttler struct {
	limiters sync.Map // ip → *rate.Limiter
	limit    rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (t *throttler) limiterFor(ip string) *rate.Limiter {
	if l, ok := t.limiters.Load(ip); ok {
		return l.(*rate.Limiter)
	}
	l, _ := t.limiters.LoadOrStore(ip, rate.NewLimiter(t.limit, t.burst))
	t.maybeCleanup()
	return l.(*rate.Limiter)
}

// maybeCleanup drops limiters whose buckets are full again: an idle bucket
// means the IP has not been seen for at least burst/limit seconds.
func (t *throttler) maybeCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastCleanup) < throttleCleanupInterval {
		return
	}
	t.lastCleanup = time.Now()

	t.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(t.burst) {
			t.limiters.Delete(key)
		}
		return true
	})
}
