package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/enersim/energy-simulator/internal/auth"
	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

// enumerationDecoy is a valid bcrypt hash of a random string nobody knows.
// Login attempts against unknown usernames compare against it so they cost
// the same as a wrong password, keeping response timing and message text
// identical for both cases.
var enumerationDecoy = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService implements registration and login: the only place tokens are
// minted and the only place the user store is read or written.
type AuthService struct {
	users       ports.UserRepository
	codec       ports.TokenCodec
	policy      *auth.ScopePolicy
	audit       ports.AuditRecorder
	defaultRole string
}

func NewAuthService(users ports.UserRepository, codec ports.TokenCodec, policy *auth.ScopePolicy, audit ports.AuditRecorder, defaultRole string) *AuthService {
	if policy == nil {
		policy = auth.DefaultScopePolicy()
	}
	if audit == nil {
		audit = ports.NopAuditRecorder{}
	}
	if defaultRole == "" {
		defaultRole = domain.RoleUser
	}
	return &AuthService{
		users:       users,
		codec:       codec,
		policy:      policy,
		audit:       audit,
		defaultRole: defaultRole,
	}
}

// Login verifies credentials and mints a token. Unknown usernames and wrong
// passwords both fail with domain.ErrInvalidCredentials so responses cannot
// distinguish the two.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(enumerationDecoy, []byte(password))
			s.recordAuth(username, "login", "failure")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordAuth(username, "login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.mint(user)
	if err != nil {
		return nil, err
	}

	s.recordAuth(username, "login", "success")
	return result, nil
}

// Register creates an account with the default role, persists it, and logs
// the new user straight in.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []string{s.defaultRole},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	result, err := s.mint(created)
	if err != nil {
		return nil, err
	}

	s.recordAuth(username, "register", "success")
	return result, nil
}

// mint derives the identity's scopes from its roles and issues a token.
func (s *AuthService) mint(user *domain.User) (*ports.AuthResult, error) {
	identity := domain.NewIdentity(user.Username, user.Roles, s.policy.UnionFor(user.Roles))

	token, expiresAt, err := s.codec.Issue(identity)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Username:  identity.Username,
		Roles:     identity.Roles,
		Scopes:    identity.Scopes,
	}, nil
}

func (s *AuthService) recordAuth(username, action, outcome string) {
	s.audit.Record(domain.AuthEvent{
		Username:  username,
		Action:    action,
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
	})
}
