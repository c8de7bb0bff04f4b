package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enersim/energy-simulator/internal/api/middleware"
	"github.com/enersim/energy-simulator/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Authenticate middleware.
// Presence of a non-empty username proves the middleware ran and the token
// validated; protected handlers fast-fail with 401 otherwise.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(middleware.ContextIdentityKey).(domain.Identity)
	if !ok || identity.Username == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}

// setNoStore marks a response as non-cacheable. Every response carrying a
// credential or an auth decision gets these headers.
func setNoStore(c echo.Context) {
	h := c.Response().Header()
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
