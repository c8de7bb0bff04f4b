package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/enersim/energy-simulator/internal/api/metrics"
	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

// Rate-limit keying strategies.
const (
	StrategyIP     = "IP"
	StrategyIPUser = "IP_USER"
)

// maxProbeBody bounds how much of the request body the IP_USER strategy will
// read to extract the attempted username.
const maxProbeBody = 1 << 16

// RateLimitOptions configures the login limiter middleware.
type RateLimitOptions struct {
	Limiter ports.LoginRateLimiter
	// Strategy selects the client key: IP keys on the caller's network
	// address alone, IP_USER additionally mixes in the attempted username.
	Strategy string
	// RetryAfterSeconds is the minimum Retry-After hint on 429 responses;
	// the actual hint is the larger of this and the time left in the window.
	RetryAfterSeconds int
	Audit             ports.AuditRecorder
	Log               zerolog.Logger
}

// LoginRateLimit bounds attempts on the login path. Rejections carry a 429,
// a Retry-After hint, and no-store caching headers. Limiter backend errors
// fail open: a broken counter store must not lock everyone out.
func LoginRateLimit(opts RateLimitOptions) echo.MiddlewareFunc {
	audit := opts.Audit
	if audit == nil {
		audit = ports.NopAuditRecorder{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, username := clientKey(c, opts.Strategy)

			allowed, err := opts.Limiter.Allow(c.Request().Context(), key)
			if err != nil {
				opts.Log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if allowed {
				return next(c)
			}

			retryAfter := opts.Limiter.SecondsUntilReset()
			if opts.RetryAfterSeconds > retryAfter {
				retryAfter = opts.RetryAfterSeconds
			}

			metrics.RateLimitedTotal.Inc()
			audit.Record(domain.AuthEvent{
				Username:  username,
				Action:    "rate_limited",
				Outcome:   "rejected",
				ClientIP:  c.RealIP(),
				Timestamp: time.Now().UTC(),
			})
			opts.Log.Warn().
				Str("key", key).
				Int("retry_after", retryAfter).
				Msg("login rate limit exceeded")

			h := c.Response().Header()
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			setNoStore(h)
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many login attempts, try again later",
			})
		}
	}
}

// clientKey builds the limiter key for this request. Under IP_USER the
// attempted username is read from the JSON body and lower-cased; any failure
// to read or parse the body falls back silently to address-only keying.
func clientKey(c echo.Context, strategy string) (key, username string) {
	key = c.RealIP()
	if strategy != StrategyIPUser {
		return key, ""
	}

	req := c.Request()
	body, err := io.ReadAll(io.LimitReader(req.Body, maxProbeBody))
	if err != nil {
		return key, ""
	}
	// Hand the body back so the handler can still bind it.
	req.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		Username string `json:"username"`
	}
	if json.Unmarshal(body, &probe) != nil || probe.Username == "" {
		return key, ""
	}
	username = strings.ToLower(probe.Username)
	return key + "|" + username, username
}

func setNoStore(h http.Header) {
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
