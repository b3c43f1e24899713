package domain

import (
	"strings"
	"time"
)

// Payment lifecycle statuses as reported by the external provider.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// completedStatuses are the provider spellings that confirm a payment and
// upgrade the payer to premium.
var completedStatuses = map[string]struct{}{
	"completed": {},
	"success":   {},
	"paid":      {},
}

// IsCompletedStatus reports whether a provider status string confirms payment.
func IsCompletedStatus(status string) bool {
	_, ok := completedStatuses[strings.ToLower(status)]
	return ok
}

// PaymentRecord is a one-time payment tracked for display. The client layer
// only ever reads these; upgrades happen through the webhook path.
type PaymentRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ExternalPaymentID string    `json:"external_payment_id"`
	Amount            int64     `json:"amount"` // minor units
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
