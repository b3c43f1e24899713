package trial

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type memTrialStorage struct {
	state domain.TrialState
	ok    bool
	saves int
}

func (m *memTrialStorage) LoadTrial() (domain.TrialState, bool) {
	return m.state, m.ok
}

func (m *memTrialStorage) SaveTrial(state domain.TrialState) error {
	m.state = state
	m.ok = true
	m.saves++
	return nil
}

type stubEntitlements struct {
	sess *domain.Session
}

func (s *stubEntitlements) Current() *domain.Session { return s.sess }

func premiumSession() *domain.Session {
	return &domain.Session{
		User:  domain.User{ID: "user-1", IsPremium: true},
		Token: "tok",
	}
}

func newTestTracker(storage *memTrialStorage, ent *stubEntitlements, at time.Time) *Tracker {
	tr := NewTracker(storage, ent, 4, 24, zerolog.Nop())
	tr.now = func() time.Time { return at }
	return tr
}

func TestFreshTrialStartsWithFullCredits(t *testing.T) {
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	if got := tr.Remaining(); got != 4 {
		t.Fatalf("remaining = %d, want 4", got)
	}
	if storage.saves == 0 {
		t.Fatal("fresh trial state not persisted")
	}
}

func TestIncrementConsumesToZeroNeverNegative(t *testing.T) {
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		tr.Increment()
	}
	if got := tr.Remaining(); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	if !tr.IsExhausted() {
		t.Fatal("expected exhausted after spending all credits")
	}
	if storage.state.Consumed != 4 {
		t.Fatalf("consumed = %d, want 4", storage.state.Consumed)
	}
}

func TestPremiumBypassesTheGate(t *testing.T) {
	storage := &memTrialStorage{
		state: domain.NewTrialState(0, 24, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		ok:    true,
	}
	// Zero credits on disk, but the identity is premium.
	tr := newTestTracker(storage, &stubEntitlements{sess: premiumSession()}, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	if tr.IsExhausted() {
		t.Fatal("premium identity reported as exhausted")
	}

	saves := storage.saves
	tr.Increment()
	if storage.saves != saves {
		t.Fatal("premium increment touched the counter")
	}
}

func TestWindowResetRestoresCredits(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, start)

	for i := 0; i < 4; i++ {
		tr.Increment()
	}
	if !tr.IsExhausted() {
		t.Fatal("expected exhausted")
	}

	// Same persisted state read back 25 hours later.
	later := newTestTracker(storage, &stubEntitlements{}, start.Add(25*time.Hour))
	if later.IsExhausted() {
		t.Fatal("window reset did not un-exhaust the trial")
	}
	if got := later.Remaining(); got != 4 {
		t.Fatalf("remaining after reset = %d, want 4", got)
	}
}

func TestNoResetWithinWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, start)
	tr.Increment()

	later := newTestTracker(storage, &stubEntitlements{}, start.Add(23*time.Hour))
	if got := later.Remaining(); got != 3 {
		t.Fatalf("remaining = %d, want 3 inside the window", got)
	}
}

func TestGateReturnsExhaustedSentinel(t *testing.T) {
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	if err := tr.Gate(); err != nil {
		t.Fatalf("fresh trial gated: %v", err)
	}
	for i := 0; i < 4; i++ {
		tr.Increment()
	}
	if err := tr.Gate(); !errors.Is(err, domain.ErrTrialExhausted) {
		t.Fatalf("err = %v, want ErrTrialExhausted", err)
	}
}

func TestCorruptStateStartsFresh(t *testing.T) {
	// ok = false models a missing or corrupt record.
	storage := &memTrialStorage{}
	tr := newTestTracker(storage, &stubEntitlements{}, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	if tr.IsExhausted() {
		t.Fatal("cold start reported as exhausted")
	}
	if got := tr.Remaining(); got != 4 {
		t.Fatalf("remaining = %d, want 4", got)
	}
}
