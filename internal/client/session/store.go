// Package session owns the cached identity and bearer token, the root of
// trust for every other client component.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

// Backend is the slice of the API client the session store needs.
type Backend interface {
	Login(ctx context.Context, email string) (*domain.Session, error)
	Register(ctx context.Context, email, name string) (*domain.Session, error)
	Profile(ctx context.Context, token string) (*domain.User, error)
}

// Storage is the durable local record of the session.
type Storage interface {
	LoadSession() (*domain.Session, bool)
	SaveSession(sess *domain.Session) error
	DeleteSession() error
}

// Store caches the active session in memory and mirrors it to durable
// storage. It performs no internal locking: the surrounding application is an
// event-driven single-writer environment, and callers that can race (rapid
// retry of Login, overlapping Refresh) dedupe at the call site.
type Store struct {
	backend Backend
	storage Storage
	log     zerolog.Logger

	current *domain.Session
}

func NewStore(backend Backend, storage Storage, log zerolog.Logger) *Store {
	return &Store{backend: backend, storage: storage, log: log}
}

// Load populates the in-memory session from durable storage. A missing or
// corrupt record leaves the store anonymous; it never fails.
func (s *Store) Load() {
	sess, ok := s.storage.LoadSession()
	if !ok {
		return
	}
	s.current = sess
	s.log.Debug().Str("email", sess.User.Email).Msg("session restored")
}

// Current returns the active session, or nil when anonymous.
func (s *Store) Current() *domain.Session {
	return s.current
}

// Token returns the active bearer token, or "" when anonymous.
func (s *Store) Token() string {
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login authenticates the email, falling back to registration when the
// backend reports no such identity. The resulting session is persisted and
// becomes current. Failure of both calls surfaces as AuthenticationError.
func (s *Store) Login(ctx context.Context, email, name string) (*domain.User, error) {
	sess, err := s.backend.Login(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		sess, err = s.backend.Register(ctx, email, name)
	}
	if err != nil {
		return nil, &domain.AuthenticationError{Reason: err}
	}

	s.current = sess
	if err := s.storage.SaveSession(sess); err != nil {
		// The in-memory session is still valid; only the reload path suffers.
		s.log.Warn().Err(err).Msg("failed to persist session")
	}
	s.log.Info().Str("email", sess.User.Email).Msg("logged in")
	return &sess.User, nil
}

// Logout clears the persisted and in-memory session unconditionally.
func (s *Store) Logout() {
	s.current = nil
	if err := s.storage.DeleteSession(); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete persisted session")
	}
	s.log.Info().Msg("logged out")
}

// Refresh re-fetches the identity behind the current token and overwrites
// the cached copy (token unchanged). An invalid token, or any completed
// profile call that failed, logs the session out: a dead token must never be
// retried silently. A transport failure where the request never reached the
// backend keeps the session, since it proves nothing about the token.
func (s *Store) Refresh(ctx context.Context) error {
	if s.current == nil {
		return nil
	}

	user, err := s.backend.Profile(ctx, s.current.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			s.log.Warn().Msg("token rejected, logging out")
			s.Logout()
			return &domain.AuthenticationError{Reason: err}
		}
		var te *domain.TransportError
		if errors.As(err, &te) && te.Status != 0 {
			s.log.Warn().Int("status", te.Status).Msg("profile fetch failed, logging out")
			s.Logout()
			return err
		}
		return err
	}

	s.current.User = *user
	if err := s.storage.SaveSession(s.current); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed session")
	}
	return nil
}

// UpgradeLocally flips the premium flag optimistically, ahead of the
// authoritative Refresh after the payment round-trip. No-op when anonymous.
func (s *Store) UpgradeLocally() {
	if s.current == nil {
		return
	}
	now := time.Now().UTC()
	s.current.User.IsPremium = true
	s.current.User.PremiumSince = &now
	if err := s.storage.SaveSession(s.current); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist local upgrade")
	}
}
