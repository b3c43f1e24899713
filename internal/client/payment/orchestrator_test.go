package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

type stubSessions struct {
	current    *domain.Session
	loginErr   error
	loginCalls int
	refreshErr error
}

func (s *stubSessions) Current() *domain.Session { return s.current }

func (s *stubSessions) Login(_ context.Context, email, name string) (*domain.User, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	s.current = &domain.Session{
		User:  domain.User{ID: "user-1", Email: email, Name: name},
		Token: "tok",
	}
	return &s.current.User, nil
}

func (s *stubSessions) Refresh(_ context.Context) error { return s.refreshErr }

type stubCheckout struct {
	id    string
	err   error
	calls int
}

func (b *stubCheckout) CreateCheckoutSession(_ context.Context, _ string) (string, error) {
	b.calls++
	return b.id, b.err
}

func newTestOrchestrator(sessions *stubSessions, backend *stubCheckout) (*Orchestrator, *[]string) {
	var redirects []string
	o := NewOrchestrator(
		sessions,
		backend,
		Config{CheckoutURL: "https://buymeacoffee.com/clearcut", MinAmount: 30},
		func(url string) { redirects = append(redirects, url) },
		nil,
		zerolog.Nop(),
	)
	return o, &redirects
}

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		from Step
		to   Step
		want bool
	}{
		{StepForm, StepProcessing, true},
		{StepForm, StepSuccess, false},
		{StepProcessing, StepForm, true},
		{StepProcessing, StepSuccess, true},
		{StepSuccess, StepForm, false},
		{StepSuccess, StepProcessing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSubmitInvalidEmailMakesNoNetworkCall(t *testing.T) {
	sessions := &stubSessions{}
	backend := &stubCheckout{id: "cs_1"}
	o, redirects := newTestOrchestrator(sessions, backend)

	err := o.Submit(context.Background(), "not-an-email", "Alice")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %T, want ValidationError", err)
	}
	if o.Step() != StepForm {
		t.Fatalf("step = %s, want form", o.Step())
	}
	if msg := o.FieldErrors()["email"]; msg != "Please enter a valid email" {
		t.Fatalf("email field error = %q", msg)
	}
	if sessions.loginCalls != 0 || backend.calls != 0 || len(*redirects) != 0 {
		t.Fatal("validation failure reached the network")
	}
}

func TestSubmitShortNameRejected(t *testing.T) {
	o, _ := newTestOrchestrator(&stubSessions{}, &stubCheckout{})

	err := o.Submit(context.Background(), "alice@example.com", " A ")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %T, want ValidationError", err)
	}
	if msg := o.FieldErrors()["name"]; msg != "Please enter your full name" {
		t.Fatalf("name field error = %q", msg)
	}
}

func TestSubmitLogsInAndRedirects(t *testing.T) {
	sessions := &stubSessions{}
	backend := &stubCheckout{id: "cs_1"}
	o, redirects := newTestOrchestrator(sessions, backend)

	if err := o.Submit(context.Background(), "alice@example.com", "Alice"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sessions.loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1", sessions.loginCalls)
	}
	if backend.calls != 1 {
		t.Fatalf("checkout calls = %d, want 1", backend.calls)
	}
	if len(*redirects) != 1 || (*redirects)[0] != "https://buymeacoffee.com/clearcut?amount=30" {
		t.Fatalf("redirects = %v", *redirects)
	}
	if o.Step() != StepProcessing {
		t.Fatalf("step = %s, want processing", o.Step())
	}
}

func TestSubmitReusesActiveSession(t *testing.T) {
	sessions := &stubSessions{current: &domain.Session{
		User:  domain.User{ID: "user-1", Email: "alice@example.com"},
		Token: "tok",
	}}
	backend := &stubCheckout{id: "cs_1"}
	o, _ := newTestOrchestrator(sessions, backend)

	if err := o.Submit(context.Background(), "alice@example.com", "Alice"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sessions.loginCalls != 0 {
		t.Fatal("submit re-authenticated an active session")
	}
}

func TestSubmitCheckoutFailureReturnsToFormKeepingSession(t *testing.T) {
	sessions := &stubSessions{}
	backend := &stubCheckout{err: &domain.TransportError{Status: 500, Message: "boom"}}
	o, redirects := newTestOrchestrator(sessions, backend)

	if err := o.Submit(context.Background(), "alice@example.com", "Alice"); err == nil {
		t.Fatal("expected submit to fail")
	}
	if o.Step() != StepForm {
		t.Fatalf("step = %s, want form after failure", o.Step())
	}
	if !strings.HasPrefix(o.GeneralError(), "Payment failed: ") {
		t.Fatalf("general error = %q", o.GeneralError())
	}
	if sessions.current == nil {
		t.Fatal("checkout failure discarded the session established on the way")
	}
	if len(*redirects) != 0 {
		t.Fatal("failed submit still redirected")
	}
}

func TestSubmitWhileProcessingIsIgnored(t *testing.T) {
	sessions := &stubSessions{}
	backend := &stubCheckout{id: "cs_1"}
	o, _ := newTestOrchestrator(sessions, backend)

	if err := o.Submit(context.Background(), "alice@example.com", "Alice"); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if err := o.Submit(context.Background(), "alice@example.com", "Alice"); err != nil {
		t.Fatalf("double submit errored: %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("checkout calls = %d, want 1 despite double submit", backend.calls)
	}
}

func TestCompletePaymentPendingUntilConfirmed(t *testing.T) {
	sessions := &stubSessions{current: &domain.Session{
		User:  domain.User{ID: "user-1", Email: "alice@example.com"},
		Token: "tok",
	}}
	o, _ := newTestOrchestrator(sessions, &stubCheckout{})

	if err := o.CompletePayment(context.Background()); !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("err = %v, want ErrPaymentPending", err)
	}
	if o.Step() == StepSuccess {
		t.Fatal("unconfirmed payment reached success")
	}
}

func TestCompletePaymentConfirmed(t *testing.T) {
	sessions := &stubSessions{current: &domain.Session{
		User:  domain.User{ID: "user-1", Email: "alice@example.com", IsPremium: true},
		Token: "tok",
	}}
	backend := &stubCheckout{}

	var succeeded bool
	o := NewOrchestrator(
		sessions,
		backend,
		Config{CheckoutURL: "https://buymeacoffee.com/clearcut", MinAmount: 30},
		func(string) {},
		func() { succeeded = true },
		zerolog.Nop(),
	)

	if err := o.CompletePayment(context.Background()); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if o.Step() != StepSuccess {
		t.Fatalf("step = %s, want success", o.Step())
	}
	if !succeeded {
		t.Fatal("success callback not invoked")
	}
}

func TestResetReturnsToEmptyForm(t *testing.T) {
	o, _ := newTestOrchestrator(&stubSessions{}, &stubCheckout{err: errors.New("boom")})

	_ = o.Submit(context.Background(), "alice@example.com", "Alice")
	o.Reset()

	if o.Step() != StepForm || o.GeneralError() != "" || o.FieldErrors() != nil {
		t.Fatalf("reset left state behind: step=%s general=%q fields=%v", o.Step(), o.GeneralError(), o.FieldErrors())
	}
}
