package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type stubAuthService struct {
	registerToken   string
	registerUser    *domain.User
	registerCreated bool
	registerErr     error

	loginToken string
	loginUser  *domain.User
	loginErr   error

	profileUser *domain.User
	profileErr  error
}

func (s *stubAuthService) Register(_ context.Context, _, _ string) (string, *domain.User, bool, error) {
	return s.registerToken, s.registerUser, s.registerCreated, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, _ string) (string, *domain.User, error) {
	return s.loginToken, s.loginUser, s.loginErr
}

func (s *stubAuthService) Profile(_ context.Context, _ string) (*domain.User, error) {
	return s.profileUser, s.profileErr
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterNewUserReturns201(t *testing.T) {
	svc := &stubAuthService{
		registerToken:   "tok",
		registerUser:    &domain.User{ID: "user-1", Email: "alice@example.com"},
		registerCreated: true,
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/api/auth/register", `{"email":"alice@example.com","name":"Alice"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("response missing token: %s", rec.Body.String())
	}
}

func TestRegisterExistingUserReturns200(t *testing.T) {
	svc := &stubAuthService{
		registerToken:   "tok",
		registerUser:    &domain.User{ID: "user-1", Email: "alice@example.com"},
		registerCreated: false,
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/api/auth/register", `{"email":"alice@example.com"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegisterInvalidEmailRejected(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(http.MethodPost, "/api/auth/register", `{"email":"not-an-email"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginUnknownEmailSurfacesNotFound(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: domain.ErrUserNotFound})

	c, _ := newTestContext(http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com"}`)
	err := h.Login(c)
	if err != domain.ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound for the error handler to map to 404", err)
	}
}

func TestProfileRequiresAuthClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodGet, "/api/auth/profile", "")
	err := h.Profile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 HTTPError", err)
	}
}

func TestProfileReturnsUser(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		profileUser: &domain.User{ID: "user-1", Email: "alice@example.com", IsPremium: true},
	})

	c, rec := newTestContext(http.MethodGet, "/api/auth/profile", "")
	c.Set("user_id", "user-1")
	if err := h.Profile(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"is_premium":true`) {
		t.Fatalf("response missing premium flag: %s", rec.Body.String())
	}
}
