package ports

import (
	"context"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type UserService interface {
	// List returns every identity. Admin only.
	List(ctx context.Context, requesterID string) ([]domain.User, error)
	// Get returns a single identity. Self or admin.
	Get(ctx context.Context, requesterID, targetID string) (*domain.User, error)
}
