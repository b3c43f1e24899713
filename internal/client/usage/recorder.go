// Package usage reports completed processing actions to the remote log.
// Strictly best-effort: a lost event never blocks or fails the processing
// flow it describes.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const channelBuffer = 64

// Backend is the slice of the API client the recorder needs.
type Backend interface {
	RecordUsage(ctx context.Context, token, action string, metadata map[string]any) error
}

// TokenSource supplies the active bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

type event struct {
	token    string
	action   string
	metadata map[string]any
}

// Recorder posts usage events from a buffered channel on a background
// worker. Enqueueing never blocks; delivery failures go to the log sink and
// nowhere else.
type Recorder struct {
	backend Backend
	tokens  TokenSource
	events  chan event
	pending sync.WaitGroup
	log     zerolog.Logger
}

func NewRecorder(backend Backend, tokens TokenSource, log zerolog.Logger) *Recorder {
	return &Recorder{
		backend: backend,
		tokens:  tokens,
		events:  make(chan event, channelBuffer),
		log:     log,
	}
}

// Start launches the delivery worker. It stops when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	go r.run(ctx)
}

// Record enqueues one usage event stamped with the current time. Skipped
// entirely when no token is present: anonymous usage is not tracked.
func (r *Recorder) Record(action string, metadata map[string]any) {
	token := r.tokens.Token()
	if token == "" {
		return
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["timestamp"]; !ok {
		metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	r.pending.Add(1)
	select {
	case r.events <- event{token: token, action: action, metadata: metadata}:
	default:
		r.pending.Done()
		r.log.Warn().Str("action", action).Msg("usage buffer full, event dropped")
	}
}

// Flush blocks until every enqueued event has been attempted, or ctx expires.
// Short-lived callers use this before exiting; long-running ones never need to.
func (r *Recorder) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			if err := r.backend.RecordUsage(ctx, ev.token, ev.action, ev.metadata); err != nil {
				r.log.Warn().Err(err).Str("action", ev.action).Msg("failed to record usage")
			}
			r.pending.Done()
		}
	}
}
