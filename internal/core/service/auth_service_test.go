package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/enersim/energy-simulator/internal/auth"
	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
	"github.com/enersim/energy-simulator/internal/infrastructure/config"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}}
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copied := *user
	copied.ID = "u-" + user.Username
	r.users[user.Username] = &copied
	out := copied
	return &out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; !exists {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	r.users[user.Username] = &copied
	out := copied
	return &out, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

type capturingRecorder struct {
	events []domain.AuthEvent
}

func (c *capturingRecorder) Record(event domain.AuthEvent) {
	c.events = append(c.events, event)
}

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo, *capturingRecorder, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec(config.JWTConfig{
		Issuer:            "energy-simulator",
		Audience:          "energy-simulator-clients",
		Secret:            "0123456789abcdef0123456789abcdef",
		ExpirationSeconds: 3600,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	repo := newStubUserRepo()
	audit := &capturingRecorder{}
	svc := NewAuthService(repo, codec, nil, audit, "")
	return svc, repo, audit, codec
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _, _, codec := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "john", "secret", "john@example.com")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.TokenType != "Bearer" {
		t.Fatalf("TokenType = %q, want Bearer", registered.TokenType)
	}
	if len(registered.Roles) != 1 || registered.Roles[0] != domain.RoleUser {
		t.Fatalf("Roles = %v, want [%s]", registered.Roles, domain.RoleUser)
	}

	result, err := svc.Login(ctx, "john", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	identity, ok := codec.Validate(result.Token)
	if !ok {
		t.Fatal("freshly minted token should validate")
	}
	if identity.Username != "john" {
		t.Fatalf("Username = %q, want john", identity.Username)
	}
	if len(identity.Roles) != 1 || identity.Roles[0] != domain.RoleUser {
		t.Fatalf("Roles = %v, want [%s]", identity.Roles, domain.RoleUser)
	}

	want := auth.DefaultScopePolicy().ScopesFor(domain.RoleUser)
	sort.Strings(want)
	got := append([]string(nil), identity.Scopes...)
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("Scopes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Scopes = %v, want %v", got, want)
		}
	}
}

func TestAuthService_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "real", "rightpass", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, "real", "wrongpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login with wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_UnknownUserIndistinguishable(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "real", "rightpass", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unknownErr := svc.Login(ctx, "ghost", "x")
	_, wrongErr := svc.Login(ctx, "real", "wrongpass")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v, want ErrInvalidCredentials", unknownErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error text differs between unknown user (%q) and wrong password (%q)", unknownErr, wrongErr)
	}
}

func TestAuthService_EmptyCredentials(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, password string }{
		{"", "secret"},
		{"john", ""},
		{"", ""},
	} {
		if _, err := svc.Login(ctx, tc.username, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q): err = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
		}
	}
}

func TestAuthService_DuplicateRegistration(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "john", "secret", ""); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, "john", "other", "")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("duplicate Register: err = %v, want ErrUserExists", err)
	}
}

func TestAuthService_PasswordStoredHashed(t *testing.T) {
	svc, repo, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "john", "secret", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	stored := repo.users["john"]
	if stored.PasswordHash == "secret" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored as a bcrypt hash, got %q", stored.PasswordHash)
	}
}

func TestAuthService_AuditTrail(t *testing.T) {
	svc, _, audit, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _ = svc.Register(ctx, "john", "secret", "")
	_, _ = svc.Login(ctx, "john", "secret")
	_, _ = svc.Login(ctx, "john", "nope")
	_, _ = svc.Login(ctx, "ghost", "x")

	type pair struct{ action, outcome string }
	want := []pair{
		{"register", "success"},
		{"login", "success"},
		{"login", "failure"},
		{"login", "failure"},
	}
	if len(audit.events) != len(want) {
		t.Fatalf("recorded %d events, want %d", len(audit.events), len(want))
	}
	for i, w := range want {
		if audit.events[i].Action != w.action || audit.events[i].Outcome != w.outcome {
			t.Fatalf("event %d = %s/%s, want %s/%s",
				i, audit.events[i].Action, audit.events[i].Outcome, w.action, w.outcome)
		}
	}
}

var _ ports.UserRepository = (*stubUserRepo)(nil)
var _ ports.AuditRecorder = (*capturingRecorder)(nil)
