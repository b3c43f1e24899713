package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type stubBackend struct {
	records []domain.UsageRecord
	err     error
	calls   int
}

func (b *stubBackend) UsageHistory(_ context.Context, _ string) ([]domain.UsageRecord, error) {
	b.calls++
	return b.records, b.err
}

type fixedToken string

func (f fixedToken) Token() string { return string(f) }

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

func TestAggregateDateBucketsFirstSeenOrder(t *testing.T) {
	records := []domain.UsageRecord{
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 9)},
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 10)},
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 11)},
		{Action: "background_removal", Timestamp: at(2024, 1, 2, 9)},
		{Action: "background_removal", Timestamp: at(2024, 1, 2, 10)},
	}

	snap := Aggregate(records)
	if snap.TotalUsage != 5 {
		t.Fatalf("total = %d, want 5", snap.TotalUsage)
	}
	want := []domain.DateCount{
		{Date: "1/1/2024", Count: 3},
		{Date: "1/2/2024", Count: 2},
	}
	if len(snap.UsageByDate) != len(want) {
		t.Fatalf("date buckets = %+v", snap.UsageByDate)
	}
	for i, w := range want {
		if snap.UsageByDate[i] != w {
			t.Fatalf("bucket %d = %+v, want %+v", i, snap.UsageByDate[i], w)
		}
	}
}

func TestAggregateActionBuckets(t *testing.T) {
	records := []domain.UsageRecord{
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 9)},
		{Action: "upscale", Timestamp: at(2024, 1, 1, 10)},
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 11)},
	}

	snap := Aggregate(records)
	if len(snap.UsageByAction) != 2 {
		t.Fatalf("action buckets = %+v", snap.UsageByAction)
	}
	if snap.UsageByAction[0] != (domain.ActionCount{Action: "background_removal", Count: 2}) {
		t.Fatalf("first bucket = %+v", snap.UsageByAction[0])
	}
	if snap.UsageByAction[1] != (domain.ActionCount{Action: "upscale", Count: 1}) {
		t.Fatalf("second bucket = %+v", snap.UsageByAction[1])
	}
}

func TestAggregateRecentActivityNewestFirstCapped(t *testing.T) {
	var records []domain.UsageRecord
	for i := 0; i < 15; i++ {
		records = append(records, domain.UsageRecord{
			ID:        string(rune('a' + i)),
			Timestamp: at(2024, 1, 1, 0).Add(time.Duration(i) * time.Minute),
		})
	}

	snap := Aggregate(records)
	if len(snap.RecentActivity) != 10 {
		t.Fatalf("recent = %d entries, want 10", len(snap.RecentActivity))
	}
	if snap.RecentActivity[0].ID != records[14].ID {
		t.Fatalf("first recent = %q, want newest %q", snap.RecentActivity[0].ID, records[14].ID)
	}
	if snap.RecentActivity[9].ID != records[5].ID {
		t.Fatalf("last recent = %q, want %q", snap.RecentActivity[9].ID, records[5].ID)
	}
}

func TestAggregateMetadataFrequencyTables(t *testing.T) {
	records := []domain.UsageRecord{
		{Timestamp: at(2024, 1, 1, 9), Metadata: map[string]any{"file_type": "png", "size_kb": 120}},
		{Timestamp: at(2024, 1, 1, 10), Metadata: map[string]any{"file_type": "png"}},
		{Timestamp: at(2024, 1, 1, 11), Metadata: map[string]any{"file_type": "jpg"}},
	}

	snap := Aggregate(records)
	if snap.MetadataStats["file_type"]["png"] != 2 {
		t.Fatalf("png count = %d, want 2", snap.MetadataStats["file_type"]["png"])
	}
	if snap.MetadataStats["file_type"]["jpg"] != 1 {
		t.Fatalf("jpg count = %d, want 1", snap.MetadataStats["file_type"]["jpg"])
	}
	// Non-string values are bucketed by their printed form.
	if snap.MetadataStats["size_kb"]["120"] != 1 {
		t.Fatalf("size_kb table = %+v", snap.MetadataStats["size_kb"])
	}
}

func TestAggregateEmptyLog(t *testing.T) {
	snap := Aggregate(nil)
	if snap.TotalUsage != 0 || len(snap.UsageByDate) != 0 || len(snap.RecentActivity) != 0 {
		t.Fatalf("empty log snapshot = %+v", snap)
	}
}

func TestFetchRequiresToken(t *testing.T) {
	backend := &stubBackend{}
	a := NewAggregator(backend, fixedToken(""), zerolog.Nop())

	_, err := a.Fetch(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if backend.calls != 0 {
		t.Fatal("anonymous fetch reached the backend")
	}
}

// supersedingBackend models a newer fetch being issued while this one is in
// flight, by bumping the generation from inside the call.
type supersedingBackend struct {
	a       *Aggregator
	records []domain.UsageRecord
}

func (b *supersedingBackend) UsageHistory(_ context.Context, _ string) ([]domain.UsageRecord, error) {
	b.a.generation++
	return b.records, nil
}

func TestFetchSupersededResultDiscarded(t *testing.T) {
	backend := &supersedingBackend{records: []domain.UsageRecord{
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 9)},
	}}
	a := NewAggregator(backend, fixedToken("tok"), zerolog.Nop())
	backend.a = a

	snap, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if snap.TotalUsage != 0 {
		t.Fatalf("superseded fetch applied its result: %+v", snap)
	}
	if a.Snapshot().TotalUsage != 0 {
		t.Fatal("superseded fetch overwrote the stored snapshot")
	}
}

func TestFetchFailureKeepsPreviousSnapshot(t *testing.T) {
	backend := &stubBackend{records: []domain.UsageRecord{
		{Action: "background_removal", Timestamp: at(2024, 1, 1, 9)},
	}}
	a := NewAggregator(backend, fixedToken("tok"), zerolog.Nop())

	if _, err := a.Fetch(context.Background()); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	backend.err = &domain.TransportError{Status: 500, Message: "boom"}
	snap, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected fetch to fail")
	}
	if snap.TotalUsage != 1 {
		t.Fatalf("failed fetch clobbered the snapshot: %+v", snap)
	}
	if a.Snapshot().TotalUsage != 1 {
		t.Fatal("stored snapshot lost after failed fetch")
	}
}
