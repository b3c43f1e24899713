package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

type stubEnqueuer struct {
	events []ports.UsageEventInput
}

func (s *stubEnqueuer) Enqueue(event ports.UsageEventInput) {
	s.events = append(s.events, event)
}

type stubUsageService struct {
	history []domain.UsageRecord
}

func (s *stubUsageService) Record(_ context.Context, _ ports.UsageEventInput) error {
	return nil
}

func (s *stubUsageService) History(_ context.Context, _ string) ([]domain.UsageRecord, error) {
	return s.history, nil
}

func TestRecordEnqueuesAndAnswersImmediately(t *testing.T) {
	enq := &stubEnqueuer{}
	h := NewUsageHandler(enq, &stubUsageService{})

	body := `{"action":"background_removal","metadata_json":{"file_type":"png"}}`
	c, rec := newTestContext(http.MethodPost, "/api/usage", body)
	c.Set("user_id", "user-1")
	if err := h.Record(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(enq.events) != 1 {
		t.Fatalf("enqueued %d events, want 1", len(enq.events))
	}
	ev := enq.events[0]
	if ev.UserID != "user-1" || ev.Action != "background_removal" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Metadata["file_type"] != "png" {
		t.Fatalf("metadata lost: %+v", ev.Metadata)
	}
}

func TestRecordRequiresAuthClaims(t *testing.T) {
	h := NewUsageHandler(&stubEnqueuer{}, &stubUsageService{})

	c, _ := newTestContext(http.MethodPost, "/api/usage", `{"action":"background_removal"}`)
	if err := h.Record(c); err == nil {
		t.Fatal("expected 401 without auth claims")
	}
}
