// Package trial gates processing for identities without a paid entitlement:
// a fixed number of credits per time window, reset lazily when the window
// elapses. The state is anonymous-safe and survives restarts.
package trial

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// Storage is the durable local record of the trial state.
type Storage interface {
	LoadTrial() (domain.TrialState, bool)
	SaveTrial(state domain.TrialState) error
}

// EntitlementSource reports the active identity, if any. Premium identities
// bypass the trial gate entirely.
type EntitlementSource interface {
	Current() *domain.Session
}

// Tracker owns the trial counter. There is no background scheduler: the
// window reset runs lazily on every read, since nothing guarantees the
// process is alive when the window elapses.
type Tracker struct {
	storage      Storage
	entitlements EntitlementSource
	credits      int
	periodHours  int
	log          zerolog.Logger

	now    func() time.Time
	state  domain.TrialState
	loaded bool
}

// NewTracker builds a Tracker handing out credits per periodHours window.
func NewTracker(storage Storage, entitlements EntitlementSource, credits, periodHours int, log zerolog.Logger) *Tracker {
	return &Tracker{
		storage:      storage,
		entitlements: entitlements,
		credits:      credits,
		periodHours:  periodHours,
		log:          log,
		now:          time.Now,
	}
}

// Remaining returns the credits left in the current window.
func (t *Tracker) Remaining() int {
	t.ensure()
	return t.state.RemainingCredits
}

// IsExhausted reports whether the gate is tripped. Always false for premium.
func (t *Tracker) IsExhausted() bool {
	if t.isPremium() {
		return false
	}
	t.ensure()
	return t.state.Exhausted()
}

// Increment consumes one credit for a successfully completed processing
// action. No-op when exhausted (the count never goes negative) and no-op for
// premium identities, which never touch the counter.
func (t *Tracker) Increment() {
	if t.isPremium() {
		return
	}
	t.ensure()
	if t.state.Exhausted() {
		return
	}
	t.state = t.state.Consume()
	t.persist()
}

// Gate returns domain.ErrTrialExhausted when processing must be blocked.
// The error message is the user-facing upgrade call-to-action.
func (t *Tracker) Gate() error {
	if t.IsExhausted() {
		return domain.ErrTrialExhausted
	}
	return nil
}

// State returns a copy of the current trial state for display.
func (t *Tracker) State() domain.TrialState {
	t.ensure()
	return t.state
}

// ensure loads (or initialises) the state and applies the lazy window reset.
func (t *Tracker) ensure() {
	if !t.loaded {
		state, ok := t.storage.LoadTrial()
		if !ok {
			state = domain.NewTrialState(t.credits, t.periodHours, t.now())
			t.state = state
			t.loaded = true
			t.persist()
			t.log.Debug().Int("credits", t.credits).Msg("fresh trial started")
			return
		}
		t.state = state
		t.loaded = true
	}

	if state, reset := t.state.CheckReset(t.credits, t.now()); reset {
		t.state = state
		t.persist()
		t.log.Info().Int("credits", t.credits).Msg("trial window reset")
	}
}

func (t *Tracker) persist() {
	if err := t.storage.SaveTrial(t.state); err != nil {
		t.log.Warn().Err(err).Msg("failed to persist trial state")
	}
}

func (t *Tracker) isPremium() bool {
	sess := t.entitlements.Current()
	return sess != nil && sess.User.IsPremium
}
