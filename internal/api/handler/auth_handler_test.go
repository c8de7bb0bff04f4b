package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

type stubAuthService struct {
	result *ports.AuthResult
	err    error

	lastUsername string
	lastPassword string
}

func (s *stubAuthService) Login(_ context.Context, username, password string) (*ports.AuthResult, error) {
	s.lastUsername, s.lastPassword = username, password
	return s.result, s.err
}

func (s *stubAuthService) Register(_ context.Context, username, password, email string) (*ports.AuthResult, error) {
	s.lastUsername, s.lastPassword = username, password
	return s.result, s.err
}

func okResult() *ports.AuthResult {
	return &ports.AuthResult{
		Token:     "signed-token",
		TokenType: "Bearer",
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Username:  "john",
		Roles:     []string{"USER"},
		Scopes:    []string{"read:simulations"},
	}
}

func handlerTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &stubAuthService{result: okResult()}
	h := NewAuthHandler(svc)

	c, rec := handlerTestContext(http.MethodPost, "/auth/login", `{"username":"john","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}

	var resp struct {
		Token     string   `json:"token"`
		TokenType string   `json:"tokenType"`
		ExpiresAt string   `json:"expiresAt"`
		Username  string   `json:"username"`
		Roles     []string `json:"roles"`
		Scopes    []string `json:"scopes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed-token" || resp.TokenType != "Bearer" {
		t.Fatalf("token fields = %q/%q", resp.Token, resp.TokenType)
	}
	if resp.ExpiresAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("expiresAt = %q, want RFC3339 UTC", resp.ExpiresAt)
	}
	if resp.Username != "john" || len(resp.Roles) != 1 || len(resp.Scopes) != 1 {
		t.Fatalf("identity fields = %+v", resp)
	}

	if svc.lastUsername != "john" || svc.lastPassword != "secret" {
		t.Fatalf("service called with %q/%q", svc.lastUsername, svc.lastPassword)
	}
}

func TestAuthHandler_LoginBadCredentialsPropagates(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrInvalidCredentials}
	h := NewAuthHandler(svc)

	c, rec := handlerTestContext(http.MethodPost, "/auth/login", `{"username":"john","password":"wrong"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials to reach the error handler", err)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store even on failure", got)
	}
}

func TestAuthHandler_LoginRejectsMissingFields(t *testing.T) {
	svc := &stubAuthService{result: okResult()}
	h := NewAuthHandler(svc)

	for _, body := range []string{
		`{"username":"john"}`,
		`{"password":"secret"}`,
		`{}`,
		`not json`,
	} {
		c, _ := handlerTestContext(http.MethodPost, "/auth/login", body)
		err := h.Login(c)

		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: err = %v, want 400 HTTPError", body, err)
		}
	}
	if svc.lastUsername != "" {
		t.Fatal("service must not be called for invalid payloads")
	}
}

func TestAuthHandler_RegisterSuccess(t *testing.T) {
	svc := &stubAuthService{result: okResult()}
	h := NewAuthHandler(svc)

	c, rec := handlerTestContext(http.MethodPost, "/auth/register",
		`{"username":"john","password":"longenough","email":"john@example.com"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	svc := &stubAuthService{result: okResult()}
	h := NewAuthHandler(svc)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"jo","password":"longenough"}`},
		{"short password", `{"username":"john","password":"short"}`},
		{"bad email", `{"username":"john","password":"longenough","email":"not-an-email"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := handlerTestContext(http.MethodPost, "/auth/register", tc.body)
			err := h.Register(c)

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("err = %v, want 400 HTTPError", err)
			}
		})
	}
}

func TestAuthHandler_RegisterConflictPropagates(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrUserExists}
	h := NewAuthHandler(svc)

	c, _ := handlerTestContext(http.MethodPost, "/auth/register",
		`{"username":"john","password":"longenough"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists to reach the error handler", err)
	}
}

var _ ports.AuthService = (*stubAuthService)(nil)
