package ports

import (
	"context"
	"time"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// UsageEventInput is one usage event as accepted at the API boundary, before
// it is assigned an id by the store.
type UsageEventInput struct {
	UserID    string
	Action    string
	Timestamp time.Time
	Metadata  map[string]any
}

type UsageService interface {
	Record(ctx context.Context, in UsageEventInput) error
	History(ctx context.Context, userID string) ([]domain.UsageRecord, error)
}
