package ports

import (
	"context"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// WebhookInput is the payload posted back by the external payment provider.
type WebhookInput struct {
	ExternalPaymentID string
	Amount            float64 // major units as sent by the provider
	Currency          string
	Status            string
}

type PaymentService interface {
	// CreateCheckoutSession opens a pending payment and returns the record
	// whose ids seed the external checkout redirect.
	CreateCheckoutSession(ctx context.Context, userID string) (*domain.PaymentRecord, error)
	// HandleWebhook reconciles a provider confirmation into the payment
	// record and, on a completed status, upgrades the payer to premium.
	HandleWebhook(ctx context.Context, in WebhookInput) error
	History(ctx context.Context, userID string) ([]domain.PaymentRecord, error)
}
