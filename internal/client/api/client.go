// Package api is the HTTP client for the ClearCut backend, shared by every
// component of the client-resident layer. One method per collaborator call;
// the bearer token is passed explicitly so the client itself stays stateless.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// Client talks to the backend over HTTP/JSON. It imposes no timeouts and
// performs no retries; callers rely on the transport's own behaviour.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient returns a Client for the given base URL. A nil httpClient falls
// back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient, log: log}
}

type authPayload struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type authResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges a known email for a session. An unknown email surfaces as
// domain.ErrUserNotFound, the signal for the register fallback.
func (c *Client) Login(ctx context.Context, email string) (*domain.Session, error) {
	var res authResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", authPayload{Email: email}, &res)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.Session{User: res.User, Token: res.Token}, nil
}

// Register creates (or re-issues a token for) an identity.
func (c *Client) Register(ctx context.Context, email, name string) (*domain.Session, error) {
	var res authResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", authPayload{Email: email, Name: name}, &res); err != nil {
		return nil, err
	}
	return &domain.Session{User: res.User, Token: res.Token}, nil
}

// Profile fetches the identity behind the token. A 401/403 surfaces as
// domain.ErrInvalidToken so the session store can self-heal.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, "/api/auth/profile", token, nil, &user)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) || isStatus(err, http.StatusForbidden) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return &user, nil
}

type checkoutResult struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
}

// CreateCheckoutSession obtains the opaque session id that seeds the external
// payment redirect.
func (c *Client) CreateCheckoutSession(ctx context.Context, token string) (string, error) {
	var res checkoutResult
	if err := c.do(ctx, http.MethodPost, "/api/create-checkout-session", token, struct{}{}, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

type usagePayload struct {
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata_json,omitempty"`
}

// RecordUsage appends one usage event to the remote log.
func (c *Client) RecordUsage(ctx context.Context, token, action string, metadata map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/usage", token, usagePayload{Action: action, Metadata: metadata}, nil)
}

// UsageHistory fetches the caller's full ordered usage log.
func (c *Client) UsageHistory(ctx context.Context, token string) ([]domain.UsageRecord, error) {
	var records []domain.UsageRecord
	if err := c.do(ctx, http.MethodGet, "/api/usage/history", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PaymentHistory fetches the caller's payment records.
func (c *Client) PaymentHistory(ctx context.Context, token string) ([]domain.PaymentRecord, error) {
	var payments []domain.PaymentRecord
	if err := c.do(ctx, http.MethodGet, "/api/payments/history", token, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// ListUsers fetches every identity. Admin only.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single identity: your own, or any if you are an admin.
func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+id, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// do performs one round-trip. Failures become *domain.TransportError: status
// 0 when the request never got a response, the HTTP status otherwise, with
// the backend's error envelope message when one was sent.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	return nil
}

// readErrorMessage extracts the {"error": "..."} envelope, falling back to
// the raw body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "request failed"
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return string(raw)
}

// isStatus reports whether err is a TransportError with the given HTTP status.
func isStatus(err error, status int) bool {
	var te *domain.TransportError
	return errors.As(err, &te) && te.Status == status
}
