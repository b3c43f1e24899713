// Package analytics derives the dashboard view of the usage log. Pure
// read-side: it owns no persisted state and recomputes the snapshot on every
// fetch.
package analytics

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

const recentLimit = 10

// Backend is the slice of the API client the aggregator needs.
type Backend interface {
	UsageHistory(ctx context.Context, token string) ([]domain.UsageRecord, error)
}

// TokenSource supplies the active bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Aggregator folds the remote usage log into an AnalyticsSnapshot. A failed
// fetch keeps the last-known snapshot in place; callers decide whether to
// show stale data or a retry prompt. Superseded fetches discard their own
// result: the snapshot always reflects the newest request issued.
type Aggregator struct {
	backend Backend
	tokens  TokenSource
	log     zerolog.Logger

	generation uint64
	snapshot   domain.AnalyticsSnapshot
}

func NewAggregator(backend Backend, tokens TokenSource, log zerolog.Logger) *Aggregator {
	return &Aggregator{backend: backend, tokens: tokens, log: log}
}

// Snapshot returns the last successfully computed snapshot.
func (a *Aggregator) Snapshot() domain.AnalyticsSnapshot {
	return a.snapshot
}

// Fetch retrieves the full usage log and recomputes the snapshot.
func (a *Aggregator) Fetch(ctx context.Context) (domain.AnalyticsSnapshot, error) {
	token := a.tokens.Token()
	if token == "" {
		return a.snapshot, domain.ErrNotAuthenticated
	}

	a.generation++
	gen := a.generation

	records, err := a.backend.UsageHistory(ctx, token)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics fetch failed, keeping previous snapshot")
		return a.snapshot, err
	}
	if gen != a.generation {
		// A newer fetch was issued while this one was in flight.
		a.log.Debug().Uint64("generation", gen).Msg("stale analytics result discarded")
		return a.snapshot, nil
	}

	a.snapshot = Aggregate(records)
	return a.snapshot, nil
}

// Aggregate folds the log in a single pass. Date and action buckets are
// keyed by exact string equality and ordered by first appearance, so the
// same input always produces the same snapshot.
func Aggregate(records []domain.UsageRecord) domain.AnalyticsSnapshot {
	snap := domain.AnalyticsSnapshot{
		TotalUsage:    len(records),
		MetadataStats: map[string]map[string]int{},
	}

	dateIndex := map[string]int{}
	actionIndex := map[string]int{}

	for _, r := range records {
		date := r.Timestamp.Local().Format("1/2/2006")
		if i, ok := dateIndex[date]; ok {
			snap.UsageByDate[i].Count++
		} else {
			dateIndex[date] = len(snap.UsageByDate)
			snap.UsageByDate = append(snap.UsageByDate, domain.DateCount{Date: date, Count: 1})
		}

		if i, ok := actionIndex[r.Action]; ok {
			snap.UsageByAction[i].Count++
		} else {
			actionIndex[r.Action] = len(snap.UsageByAction)
			snap.UsageByAction = append(snap.UsageByAction, domain.ActionCount{Action: r.Action, Count: 1})
		}

		for key, value := range r.Metadata {
			table := snap.MetadataStats[key]
			if table == nil {
				table = map[string]int{}
				snap.MetadataStats[key] = table
			}
			table[fmt.Sprint(value)]++
		}
	}

	// The log arrives in insertion order; the newest records are at the end.
	for i := len(records) - 1; i >= 0 && len(snap.RecentActivity) < recentLimit; i-- {
		snap.RecentActivity = append(snap.RecentActivity, records[i])
	}

	return snap
}
