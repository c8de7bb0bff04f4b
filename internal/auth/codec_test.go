package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/infrastructure/config"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Issuer:            "energy-simulator",
		Audience:          "energy-simulator-api",
		Secret:            testSecret,
		ExpirationSeconds: 3600,
	}
}

// fixedClock is a mutable time source for codec tests.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T, cfg config.JWTConfig) (*Codec, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := NewCodec(cfg, WithClock(clock.now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec, clock
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, _ := newTestCodec(t, testJWTConfig())

	identity := domain.NewIdentity("alice", []string{"USER"}, []string{"read:simulations", "write:simulations"})
	token, expiresAt, err := codec.Issue(identity)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry timestamp")
	}

	got, ok := codec.Validate(token)
	if !ok {
		t.Fatal("expected token to validate")
	}
	if got.Username != "alice" {
		t.Fatalf("username = %q, want alice", got.Username)
	}
	assertSetEqual(t, got.Roles, []string{"USER"})
	assertSetEqual(t, got.Scopes, []string{"read:simulations", "write:simulations"})
}

func TestCodec_RoundTrip_EmptyRolesAndScopes(t *testing.T) {
	codec, _ := newTestCodec(t, testJWTConfig())

	token, _, err := codec.Issue(domain.NewIdentity("bob", nil, nil))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Claims should not be embedded at all when empty.
	if strings.Contains(decodePayload(t, token), `"roles"`) {
		t.Fatal("empty roles claim should be omitted")
	}

	got, ok := codec.Validate(token)
	if !ok {
		t.Fatal("expected token to validate")
	}
	if got.Roles == nil || len(got.Roles) != 0 {
		t.Fatalf("roles = %#v, want empty non-nil set", got.Roles)
	}
	if got.Scopes == nil || len(got.Scopes) != 0 {
		t.Fatalf("scopes = %#v, want empty non-nil set", got.Scopes)
	}
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationSeconds = 30
	cfg.AllowedClockSkewSeconds = 20
	codec, clock := newTestCodec(t, cfg)

	token, _, err := codec.Issue(domain.NewIdentity("alice", nil, nil))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.advance(49 * time.Second)
	if _, ok := codec.Validate(token); !ok {
		t.Fatal("token at ttl+skew-1 should validate")
	}

	clock.advance(1 * time.Second) // exactly ttl+skew
	if _, ok := codec.Validate(token); ok {
		t.Fatal("token at exactly ttl+skew should be rejected")
	}

	clock.advance(1 * time.Second)
	if _, ok := codec.Validate(token); ok {
		t.Fatal("token past ttl+skew should be rejected")
	}
}

func TestCodec_NotBeforeSkew(t *testing.T) {
	cfg := testJWTConfig()
	cfg.NotBeforeSkewSeconds = 10
	codec, clock := newTestCodec(t, cfg)

	token, _, err := codec.Issue(domain.NewIdentity("alice", nil, nil))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, ok := codec.Validate(token); ok {
		t.Fatal("token should not be valid before its not-before instant")
	}

	clock.advance(10 * time.Second)
	if _, ok := codec.Validate(token); !ok {
		t.Fatal("token should be valid once not-before has passed")
	}
}

func TestCodec_TamperRejection(t *testing.T) {
	codec, _ := newTestCodec(t, testJWTConfig())

	otherCfg := testJWTConfig()
	otherCfg.Secret = "ffffffffffffffffffffffffffffffff"
	other, _ := newTestCodec(t, otherCfg)

	token, _, err := other.Issue(domain.NewIdentity("mallory", []string{"ADMIN"}, nil))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, ok := codec.Validate(token); ok {
		t.Fatal("token signed with a different key must be rejected")
	}
}

func TestCodec_WrongAlgorithmRejection(t *testing.T) {
	codec, clock := newTestCodec(t, testJWTConfig())

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "energy-simulator",
		Audience:  jwt.ClaimStrings{"energy-simulator-api"},
		IssuedAt:  jwt.NewNumericDate(clock.now()),
		ExpiresAt: jwt.NewNumericDate(clock.now().Add(time.Hour)),
	}
	// Same key, different MAC algorithm.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok := codec.Validate(forged); ok {
		t.Fatal("token with a different MAC algorithm must be rejected")
	}
}

func TestCodec_IssuerAudienceMismatch(t *testing.T) {
	codec, _ := newTestCodec(t, testJWTConfig())

	otherCfg := testJWTConfig()
	otherCfg.Issuer = "someone-else"
	other, _ := newTestCodec(t, otherCfg)

	token, _, err := other.Issue(domain.NewIdentity("alice", nil, nil))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, ok := codec.Validate(token); ok {
		t.Fatal("token from another issuer must be rejected")
	}
}

func TestCodec_MalformedToken(t *testing.T) {
	codec, _ := newTestCodec(t, testJWTConfig())

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, ok := codec.Validate(token); ok {
			t.Fatalf("malformed token %q must be rejected", token)
		}
	}
}

func TestCodec_NonCollectionClaimsDecodeEmpty(t *testing.T) {
	codec, clock := newTestCodec(t, testJWTConfig())

	claims := jwt.MapClaims{
		"sub":    "alice",
		"iss":    "energy-simulator",
		"aud":    "energy-simulator-api",
		"iat":    clock.now().Unix(),
		"exp":    clock.now().Add(time.Hour).Unix(),
		"roles":  "ADMIN", // scalar, not a collection
		"scopes": 42,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := codec.Validate(token)
	if !ok {
		t.Fatal("token should validate despite malformed role claims")
	}
	if len(got.Roles) != 0 || len(got.Scopes) != 0 {
		t.Fatalf("non-collection claims should decode to empty sets, got roles=%v scopes=%v", got.Roles, got.Scopes)
	}
}

func TestCodec_BlankSubjectRejected(t *testing.T) {
	codec, clock := newTestCodec(t, testJWTConfig())

	claims := jwt.MapClaims{
		"sub": "   ",
		"iss": "energy-simulator",
		"aud": "energy-simulator-api",
		"iat": clock.now().Unix(),
		"exp": clock.now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok := codec.Validate(token); ok {
		t.Fatal("token with blank subject must be rejected")
	}
}

func TestNewCodec_KeyStrengthGate(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "shortkey!" // 9 bytes
	if _, err := NewCodec(cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for 9-byte secret, got %v", err)
	}

	cfg.Secret = testSecret // exactly 32 bytes
	if _, err := NewCodec(cfg); err != nil {
		t.Fatalf("32-byte secret should be accepted: %v", err)
	}

	cfg.Secret = ""
	if _, err := NewCodec(cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for missing key material, got %v", err)
	}
}

func TestNewCodec_Base64SecretPrecedence(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "shortkey!" // would fail on its own
	cfg.SecretBase64 = base64.StdEncoding.EncodeToString([]byte(testSecret))
	if _, err := NewCodec(cfg); err != nil {
		t.Fatalf("base64 secret should take precedence: %v", err)
	}

	cfg.SecretBase64 = base64.StdEncoding.EncodeToString([]byte("tiny"))
	if _, err := NewCodec(cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatal("short decoded base64 secret must be rejected")
	}

	cfg.SecretBase64 = "%%% not base64 %%%"
	if _, err := NewCodec(cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatal("invalid base64 secret must be rejected")
	}
}

func decodePayload(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return string(payload)
}

func assertSetEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	members := make(map[string]struct{}, len(got))
	for _, g := range got {
		members[g] = struct{}{}
	}
	for _, w := range want {
		if _, ok := members[w]; !ok {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
