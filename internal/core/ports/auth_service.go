package ports

import (
	"context"
	"time"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

// AuthResult is the outcome of a successful login or registration: a freshly
// minted bearer token plus the identity it encodes.
type AuthResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	Username  string
	Roles     []string
	Scopes    []string
}

// AuthService is the login/register gateway.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Register(ctx context.Context, username, password, email string) (*AuthResult, error)
}

// TokenCodec mints and validates signed bearer tokens. Validate reports
// failures (malformed, forged, expired, wrong issuer, ...) as ok=false, never
// as an error the caller must distinguish.
type TokenCodec interface {
	Issue(identity domain.Identity) (string, time.Time, error)
	Validate(token string) (domain.Identity, bool)
}
