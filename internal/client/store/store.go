// Package store holds the durable local records of the client layer: the
// session (identity + token) and the trial state. They are two independent
// files so wiping one never touches the other, mirroring the two independent
// records the product keeps in browser storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

const (
	sessionFile = "session.json"
	trialFile   = "trial.json"
)

// FileStore persists records as JSON files under a state directory. Absent or
// corrupt records read as not-present: a wiped directory is a cold start,
// never an error.
type FileStore struct {
	dir string
	log zerolog.Logger
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// LoadSession reads the persisted session. ok is false when no well-formed
// record exists.
func (s *FileStore) LoadSession() (*domain.Session, bool) {
	var sess domain.Session
	if !s.read(sessionFile, &sess) {
		return nil, false
	}
	if sess.Token == "" {
		s.log.Warn().Msg("persisted session has no token, discarding")
		return nil, false
	}
	return &sess, true
}

func (s *FileStore) SaveSession(sess *domain.Session) error {
	return s.write(sessionFile, sess)
}

func (s *FileStore) DeleteSession() error {
	return s.remove(sessionFile)
}

// LoadTrial reads the persisted trial state. ok is false when no well-formed
// record exists; callers start a fresh trial in that case.
func (s *FileStore) LoadTrial() (domain.TrialState, bool) {
	var state domain.TrialState
	if !s.read(trialFile, &state) {
		return domain.TrialState{}, false
	}
	if state.RemainingCredits < 0 || state.TrialStart.IsZero() {
		s.log.Warn().Msg("persisted trial state malformed, discarding")
		return domain.TrialState{}, false
	}
	return state, true
}

func (s *FileStore) SaveTrial(state domain.TrialState) error {
	return s.write(trialFile, state)
}

func (s *FileStore) read(name string, out any) bool {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("record", name).Msg("failed to read local record")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// Corrupt records are treated as absent, not fatal.
		s.log.Warn().Err(err).Str("record", name).Msg("local record corrupt, treating as absent")
		return false
	}
	return true
}

// write persists atomically: temp file in the same directory, then rename.
func (s *FileStore) write(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
