package domain

import (
	"errors"
	"testing"
)

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"name":  "Please enter your full name",
		"email": "Please enter a valid email",
	}}

	want := "email: Please enter a valid email; name: Please enter your full name"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestAuthenticationErrorUnwrap(t *testing.T) {
	err := &AuthenticationError{Reason: ErrInvalidToken}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatal("AuthenticationError does not unwrap to its reason")
	}
}

func TestTransportErrorMessage(t *testing.T) {
	network := &TransportError{Message: "connection refused"}
	if network.Error() != "connection refused" {
		t.Fatalf("network message = %q", network.Error())
	}

	httpErr := &TransportError{Status: 503, Message: "unavailable"}
	if httpErr.Error() != "backend returned 503: unavailable" {
		t.Fatalf("http message = %q", httpErr.Error())
	}
}
