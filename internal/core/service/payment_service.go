package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

// One-time premium price: 3000 minor units (USD 30).
const (
	checkoutAmount   = 3000
	checkoutCurrency = "usd"
)

// DedupChecker abstracts the webhook idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, externalID, status string) (bool, error)
	Mark(ctx context.Context, externalID, status string) error
}

type paymentService struct {
	payments ports.PaymentRepository
	users    ports.UserRepository
	dedup    DedupChecker
	log      zerolog.Logger
}

// NewPaymentService returns a PaymentService implementation.
func NewPaymentService(
	payments ports.PaymentRepository,
	users ports.UserRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.PaymentService {
	return &paymentService{
		payments: payments,
		users:    users,
		dedup:    dedup,
		log:      log,
	}
}

// CreateCheckoutSession opens a pending payment record at the fixed one-time
// price. The external id is generated here and carried through the provider
// redirect so the webhook can find its way back.
func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID string) (*domain.PaymentRecord, error) {
	payment := &domain.PaymentRecord{
		UserID:            userID,
		ExternalPaymentID: generateExternalID(),
		Amount:            checkoutAmount,
		Currency:          checkoutCurrency,
		Status:            domain.PaymentStatusPending,
		CreatedAt:         time.Now().UTC(),
	}

	created, err := s.payments.Create(ctx, payment)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to create checkout session")
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("external_payment_id", created.ExternalPaymentID).
		Msg("checkout session created")

	return created, nil
}

// HandleWebhook reconciles one provider confirmation. Duplicate deliveries of
// the same (payment, status) pair are silently skipped.
func (s *paymentService) HandleWebhook(ctx context.Context, in ports.WebhookInput) error {
	isDup, err := s.dedup.IsDuplicate(ctx, in.ExternalPaymentID, in.Status)
	if err != nil {
		s.log.Warn().Err(err).Str("external_payment_id", in.ExternalPaymentID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("external_payment_id", in.ExternalPaymentID).Str("status", in.Status).Msg("duplicate webhook skipped")
		return nil
	}

	payment, err := s.payments.FindByExternalID(ctx, in.ExternalPaymentID)
	if err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	if markErr := s.dedup.Mark(ctx, in.ExternalPaymentID, in.Status); markErr != nil {
		s.log.Warn().Err(markErr).Str("external_payment_id", in.ExternalPaymentID).Msg("failed to set dedup key")
	}

	payment.Status = strings.ToLower(in.Status)
	if in.Amount > 0 {
		payment.Amount = int64(in.Amount * 100)
	}
	if in.Currency != "" {
		payment.Currency = strings.ToLower(in.Currency)
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return fmt.Errorf("handle webhook: update payment: %w", err)
	}

	// A confirmed payment durably upgrades the payer. premium_since records
	// the confirmation time, not the checkout time.
	if domain.IsCompletedStatus(in.Status) {
		if err := s.users.SetPremium(ctx, payment.UserID, time.Now().UTC()); err != nil {
			return fmt.Errorf("handle webhook: upgrade user: %w", err)
		}
		s.log.Info().
			Str("user_id", payment.UserID).
			Str("external_payment_id", payment.ExternalPaymentID).
			Msg("user upgraded to premium")
	}

	return nil
}

func (s *paymentService) History(ctx context.Context, userID string) ([]domain.PaymentRecord, error) {
	return s.payments.ListByUser(ctx, userID)
}

// generateExternalID returns a provider-style payment id in the format ext_<32 hex>.
func generateExternalID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("ext_%032x", time.Now().UnixNano())
	}
	return "ext_" + hex.EncodeToString(b)
}
