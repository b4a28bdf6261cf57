package store

import (
	"context"
	"sync"

	"github.com/roach88/tenpair/internal/engine"
)

// Recorder journals a session's cycles. It implements engine.Recorder.
//
// The session row is created on the first cycle, so a Recorder can be
// handed to engine.NewSession before the session id is known.
type Recorder struct {
	store *Store
	width int

	mu      sync.Mutex
	created map[string]bool
}

var _ engine.Recorder = (*Recorder)(nil)

// NewRecorder creates a recorder writing sessions of the given width.
func NewRecorder(s *Store, width int) *Recorder {
	return &Recorder{store: s, width: width, created: make(map[string]bool)}
}

// RecordCycle writes c, creating its session row first if needed.
func (r *Recorder) RecordCycle(ctx context.Context, c engine.CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.created[c.SessionID] {
		if err := r.store.CreateSession(ctx, SessionInfo{ID: c.SessionID, Width: r.width}); err != nil {
			return err
		}
		r.created[c.SessionID] = true
	}
	return r.store.WriteCycle(ctx, c)
}
