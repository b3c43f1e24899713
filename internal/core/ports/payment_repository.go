package ports

import (
	"context"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// PaymentRepository defines the persistence interface for payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.PaymentRecord) (*domain.PaymentRecord, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.PaymentRecord, error)
	Update(ctx context.Context, payment *domain.PaymentRecord) error
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentRecord, error)
}
