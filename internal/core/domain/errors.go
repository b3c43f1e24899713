package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrEmailRequired = errors.New("email is required")
var ErrInvalidToken = errors.New("token is invalid")
var ErrAccessDenied = errors.New("access denied")
var ErrPaymentNotFound = errors.New("payment not found")
var ErrNotAuthenticated = errors.New("user not authenticated")

// ErrTrialExhausted is the entitlement gate tripping. The message doubles as
// the user-facing upgrade call-to-action.
var ErrTrialExhausted = errors.New("free trial exceeded, please purchase to continue")

// ValidationError carries field-level messages for client-side form input.
// It never reaches the network; the user corrects the form and retries.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// AuthenticationError means the credential exchange failed. When it stems
// from an existing invalid token the session store logs out as a side effect.
type AuthenticationError struct {
	Reason error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Reason)
}

func (e *AuthenticationError) Unwrap() error { return e.Reason }

// TransportError is any network or HTTP failure talking to the backend.
// Status is the HTTP status code, or 0 when the request never got a response.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}
