package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthority enforces access control over the authorities mapped by
// Authenticate. Anonymous requests get 401; authenticated requests lacking
// every one of the listed authorities get 403.
func RequireAuthority(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get(ContextIdentityKey) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			granted, _ := c.Get(ContextAuthoritiesKey).([]string)
			held := make(map[string]struct{}, len(granted))
			for _, a := range granted {
				held[a] = struct{}{}
			}
			for _, want := range required {
				if _, ok := held[want]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient authority")
		}
	}
}
