// Package payment drives the one-time upgrade flow: a three-step state
// machine from the checkout form through the external payment page to the
// confirmed upgrade.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// Step is the orchestrator's state.
type Step string

const (
	StepForm       Step = "form"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
)

// validTransitions defines the allowed state machine transitions. Success is
// terminal; the error path from Processing returns to Form.
var validTransitions = map[Step][]Step{
	StepForm:       {StepProcessing},
	StepProcessing: {StepForm, StepSuccess},
}

// CanTransitionTo reports whether a transition from the current step to next is valid.
func (s Step) CanTransitionTo(next Step) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ErrPaymentPending means the provider has not confirmed the payment yet:
// the profile refresh came back without the premium flag.
var ErrPaymentPending = errors.New("payment not yet confirmed")

// SessionStore is the slice of the session store the orchestrator needs.
type SessionStore interface {
	Current() *domain.Session
	Login(ctx context.Context, email, name string) (*domain.User, error)
	Refresh(ctx context.Context) error
}

// Backend creates checkout sessions.
type Backend interface {
	CreateCheckoutSession(ctx context.Context, token string) (string, error)
}

// Config points at the external checkout page. MinAmount is the fixed
// pre-filled charge in major units; the payer may increase it but not go
// below it.
type Config struct {
	CheckoutURL string
	MinAmount   int
}

// checkoutForm carries the user-entered fields. The email check is
// deliberately loose (an @ somewhere); the backend is the authority.
type checkoutForm struct {
	Email string `validate:"required,contains=@"`
	Name  string `validate:"required,min=2"`
}

// Orchestrator is the Form → Processing → Success machine. Not safe for
// concurrent use; the Processing guard serialises rapid double-submits from
// a single caller.
type Orchestrator struct {
	sessions SessionStore
	backend  Backend
	cfg      Config
	validate *validator.Validate
	log      zerolog.Logger

	// redirect hands control to the external payment page; onSuccess
	// re-enables the upload pipeline once the upgrade is confirmed.
	redirect  func(url string)
	onSuccess func()

	step        Step
	fieldErrors map[string]string
	generalErr  string
}

func NewOrchestrator(sessions SessionStore, backend Backend, cfg Config, redirect func(url string), onSuccess func(), log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		backend:   backend,
		cfg:       cfg,
		validate:  validator.New(),
		redirect:  redirect,
		onSuccess: onSuccess,
		step:      StepForm,
		log:       log,
	}
}

// Step returns the current state.
func (o *Orchestrator) Step() Step { return o.step }

// FieldErrors returns the per-field validation messages from the last submit.
func (o *Orchestrator) FieldErrors() map[string]string { return o.fieldErrors }

// GeneralError returns the user-facing message from the last failed submit.
func (o *Orchestrator) GeneralError() string { return o.generalErr }

// Submit validates the form and, if it passes, establishes a session (reusing
// the active one when present), creates a checkout session, and redirects to
// the external payment page. Validation failures keep the state at Form with
// field-level messages and make no network call. Later failures also return
// to Form, with a general message embedding the reason; a session established
// on the way stays valid for the retry.
func (o *Orchestrator) Submit(ctx context.Context, email, name string) error {
	if o.step == StepProcessing {
		return nil // a submit is already in flight
	}

	form := checkoutForm{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)}
	if verr := o.validateForm(form); verr != nil {
		o.fieldErrors = verr.Fields
		return verr
	}
	o.fieldErrors = nil
	o.generalErr = ""
	o.step = StepProcessing

	if o.sessions.Current() == nil {
		if _, err := o.sessions.Login(ctx, form.Email, form.Name); err != nil {
			return o.fail(err)
		}
	}

	if _, err := o.backend.CreateCheckoutSession(ctx, o.sessions.Current().Token); err != nil {
		return o.fail(err)
	}

	o.redirect(fmt.Sprintf("%s?amount=%d", o.cfg.CheckoutURL, o.cfg.MinAmount))
	return nil
}

// CompletePayment runs after the redirect back from the provider: it
// refreshes the profile and reaches Success only when the backend confirms
// the premium entitlement. Until the out-of-band confirmation lands it
// returns ErrPaymentPending and stays put.
func (o *Orchestrator) CompletePayment(ctx context.Context) error {
	if err := o.sessions.Refresh(ctx); err != nil {
		return err
	}

	sess := o.sessions.Current()
	if sess == nil || !sess.User.IsPremium {
		return ErrPaymentPending
	}

	// Confirmation usually lands while Processing, but the redirect back may
	// start a fresh process whose machine is still at Form.
	o.step = StepSuccess
	o.log.Info().Str("email", sess.User.Email).Msg("premium upgrade confirmed")
	if o.onSuccess != nil {
		o.onSuccess()
	}
	return nil
}

// Reset returns the machine to the empty Form.
func (o *Orchestrator) Reset() {
	o.step = StepForm
	o.fieldErrors = nil
	o.generalErr = ""
}

func (o *Orchestrator) validateForm(form checkoutForm) *domain.ValidationError {
	err := o.validate.Struct(form)
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "Email":
				fields["email"] = "Please enter a valid email"
			case "Name":
				fields["name"] = "Please enter your full name"
			}
		}
	} else {
		fields["form"] = "Please check your details"
	}
	return &domain.ValidationError{Fields: fields}
}

// fail transitions back to Form, recording a user-facing message that embeds
// the underlying reason.
func (o *Orchestrator) fail(err error) error {
	o.step = StepForm
	o.generalErr = fmt.Sprintf("Payment failed: %v. Please try again.", err)
	o.log.Error().Err(err).Msg("checkout flow failed")
	return err
}
