package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

type usageService struct {
	repo ports.UsageRepository
	log  zerolog.Logger
}

// NewUsageService returns a UsageService implementation.
func NewUsageService(repo ports.UsageRepository, log zerolog.Logger) ports.UsageService {
	return &usageService{repo: repo, log: log}
}

// Record appends one usage event to the log.
func (s *usageService) Record(ctx context.Context, in ports.UsageEventInput) error {
	action := in.Action
	if action == "" {
		action = domain.ActionBackgroundRemoval
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	record := &domain.UsageRecord{
		UserID:    in.UserID,
		Action:    action,
		Timestamp: ts,
		Metadata:  in.Metadata,
	}
	if _, err := s.repo.Insert(ctx, record); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	s.log.Debug().
		Str("user_id", in.UserID).
		Str("action", action).
		Msg("usage event recorded")

	return nil
}

func (s *usageService) History(ctx context.Context, userID string) ([]domain.UsageRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}
