package ports

import (
	"context"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// UsageRepository defines the append-only persistence interface for the usage
// log. Records are never updated or deleted.
type UsageRepository interface {
	Insert(ctx context.Context, record *domain.UsageRecord) (*domain.UsageRecord, error)
	// ListByUser returns the user's full usage log in insertion order.
	ListByUser(ctx context.Context, userID string) ([]domain.UsageRecord, error)
}
