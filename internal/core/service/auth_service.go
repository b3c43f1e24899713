package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

// AuthService implements passwordless registration and login: the email is
// the credential, the JWT is the proof.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, email, name string) (string, *domain.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil, false, domain.ErrEmailRequired
	}

	// An existing email is not a conflict: re-registration just issues a
	// fresh token for the existing account.
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		token, err := s.generateToken(existing)
		if err != nil {
			return "", nil, false, err
		}
		return token, existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, false, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return "", nil, false, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, false, err
	}
	return token, created, true, nil
}

func (s *AuthService) Login(ctx context.Context, email string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil, domain.ErrEmailRequired
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
