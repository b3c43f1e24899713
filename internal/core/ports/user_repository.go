package ports

import (
	"context"
	"time"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// UserRepository defines the persistence interface for identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// SetPremium durably upgrades the user's entitlement.
	SetPremium(ctx context.Context, id string, since time.Time) error
}
