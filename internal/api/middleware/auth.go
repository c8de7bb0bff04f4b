package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/enersim/energy-simulator/internal/api/metrics"
	"github.com/enersim/energy-simulator/internal/auth"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

// Context keys populated by Authenticate.
const (
	ContextIdentityKey    = "identity"    // domain.Identity
	ContextAuthoritiesKey = "authorities" // []string, ROLE_*/SCOPE_* prefixed
)

// Authenticate validates the bearer token, if any, and populates the request
// identity and its authorities. It never rejects a request: a missing,
// malformed, or invalid token leaves the request anonymous, and downstream
// authorization decides what anonymous callers may do. Requests to the given
// public paths are skipped entirely.
func Authenticate(codec ports.TokenCodec, publicPaths []string, log zerolog.Logger) echo.MiddlewareFunc {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, skip := public[c.Request().URL.Path]; skip {
				return next(c)
			}
			// Idempotent: an earlier stage may have authenticated already.
			if c.Get(ContextIdentityKey) != nil {
				return next(c)
			}

			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return next(c)
			}

			identity, valid := codec.Validate(token)
			if !valid {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				log.Debug().
					Str("path", c.Request().URL.Path).
					Msg("bearer token rejected, continuing unauthenticated")
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(ContextIdentityKey, identity)
			c.Set(ContextAuthoritiesKey, auth.MapToAuthorities(identity.Roles, identity.Scopes))
			return next(c)
		}
	}
}

// bearerToken extracts the credential from a case-insensitive
// "Bearer <token>" header value, tolerating surrounding whitespace.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
