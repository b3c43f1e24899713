package domain

import "time"

// TrialState is the durable free-trial counter. It is anonymous-safe: it is
// not bound to an identity and exists before any login. Two effective states:
// Active (RemainingCredits > 0) and Exhausted (RemainingCredits == 0), with an
// automatic Reset transition once the trial window elapses.
//
// Invariant: RemainingCredits never increases except by a full period reset,
// and never goes below zero.
type TrialState struct {
	RemainingCredits int       `json:"remaining_credits"`
	TrialStart       time.Time `json:"trial_start"`
	PeriodHours      int       `json:"period_hours"`
	Consumed         int       `json:"consumed"`
}

// NewTrialState returns a fresh trial window starting at now.
func NewTrialState(credits, periodHours int, now time.Time) TrialState {
	return TrialState{
		RemainingCredits: credits,
		TrialStart:       now,
		PeriodHours:      periodHours,
	}
}

// Exhausted reports whether all credits in the current window are spent.
// Premium identities bypass this check entirely at the call site.
func (t TrialState) Exhausted() bool {
	return t.RemainingCredits == 0
}

// CheckReset applies the lazy window reset: if the period has elapsed, the
// credit count returns to startingCredits and a new window opens at now.
// Returns the (possibly updated) state and whether a reset happened. Calling
// it twice within the same period is idempotent.
func (t TrialState) CheckReset(startingCredits int, now time.Time) (TrialState, bool) {
	if t.PeriodHours <= 0 {
		return t, false
	}
	if now.Sub(t.TrialStart) < time.Duration(t.PeriodHours)*time.Hour {
		return t, false
	}
	t.RemainingCredits = startingCredits
	t.TrialStart = now
	return t, true
}

// Consume spends one credit. No-op when already exhausted.
func (t TrialState) Consume() TrialState {
	if t.RemainingCredits == 0 {
		return t
	}
	t.RemainingCredits--
	t.Consumed++
	return t
}
