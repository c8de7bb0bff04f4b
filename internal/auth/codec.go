// Package auth holds the token codec, the role→scope policy, and the
// authority mapper: everything needed to mint a bearer token at login and to
// turn one back into an identity on later requests.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/infrastructure/config"
)

// minKeyBytes is the smallest acceptable HMAC key: HS256 keys below the hash
// output size weaken the MAC.
const minKeyBytes = 32

// ErrConfiguration marks codec construction failures: missing or short key
// material, missing issuer/audience, non-positive TTL. These are fatal at
// startup, never per-request.
var ErrConfiguration = errors.New("invalid token codec configuration")

// tokenClaims is the claim schema minted at login. Roles and scopes are only
// embedded when non-empty.
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles  []string `json:"roles,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// Codec signs and validates HS256 bearer tokens. Stateless after
// construction; safe for concurrent use.
type Codec struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	nbfSkew  time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// CodecOption customises a Codec at construction time.
type CodecOption func(*Codec)

// WithClock overrides the codec's time source. For tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec from configuration. Key material is resolved with
// JWT_SECRET_BASE64 taking precedence over JWT_SECRET; whichever is used must
// yield at least 32 bytes or construction fails with ErrConfiguration.
func NewCodec(cfg config.JWTConfig, opts ...CodecOption) (*Codec, error) {
	key, err := resolveKey(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, fmt.Errorf("%w: issuer and audience are required", ErrConfiguration)
	}
	if cfg.ExpirationSeconds <= 0 {
		return nil, fmt.Errorf("%w: expiration must be positive", ErrConfiguration)
	}

	c := &Codec{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      time.Duration(cfg.ExpirationSeconds) * time.Second,
		nbfSkew:  time.Duration(cfg.NotBeforeSkewSeconds) * time.Second,
		leeway:   time.Duration(cfg.AllowedClockSkewSeconds) * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func resolveKey(cfg config.JWTConfig) ([]byte, error) {
	if cfg.SecretBase64 != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SecretBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: secret is not valid base64: %v", ErrConfiguration, err)
		}
		if len(key) < minKeyBytes {
			return nil, fmt.Errorf("%w: decoded secret is %d bytes, need at least %d", ErrConfiguration, len(key), minKeyBytes)
		}
		return key, nil
	}
	if cfg.Secret != "" {
		if len(cfg.Secret) < minKeyBytes {
			return nil, fmt.Errorf("%w: secret is %d bytes, need at least %d", ErrConfiguration, len(cfg.Secret), minKeyBytes)
		}
		return []byte(cfg.Secret), nil
	}
	return nil, fmt.Errorf("%w: no signing key material supplied", ErrConfiguration)
}

// Issue mints a signed token for the identity and returns it together with
// its expiry instant.
func (c *Codec) Issue(identity domain.Identity) (string, time.Time, error) {
	if strings.TrimSpace(identity.Username) == "" {
		return "", time.Time{}, fmt.Errorf("issue token: empty username")
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(c.nbfSkew)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Roles:  identity.Roles,
		Scopes: identity.Scopes,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token. Any failure (malformed input, wrong
// algorithm, bad signature, issuer/audience mismatch, outside the validity
// window beyond the allowed clock skew, blank subject) reports ok=false; the
// reason is never surfaced to the caller. Roles and scopes claims that are
// absent or not arrays of strings decode to empty sets.
func (c *Codec) Validate(token string) (domain.Identity, bool) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, false
	}

	subject, _ := claims["sub"].(string)
	if strings.TrimSpace(subject) == "" {
		return domain.Identity{}, false
	}

	return domain.NewIdentity(subject, stringSet(claims["roles"]), stringSet(claims["scopes"])), true
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// stringSet coerces an untyped claim into a deduplicated string slice.
// Anything that is not an array of strings yields an empty set.
func stringSet(claim interface{}) []string {
	items, ok := claim.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
