package ports

import (
	"context"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type AuthService interface {
	// Register exchanges email (+optional name) for a token. An already
	// registered email is not an error: the existing user is returned with a
	// fresh token and created == false.
	Register(ctx context.Context, email, name string) (token string, user *domain.User, created bool, err error)
	// Login exchanges a known email for a token. Unknown emails fail with
	// domain.ErrUserNotFound, the signal for the register fallback.
	Login(ctx context.Context, email string) (token string, user *domain.User, err error)
	// Profile fetches the current identity for a verified user id.
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
