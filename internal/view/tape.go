package view

import (
	"sync"

	"github.com/roach88/tenpair/internal/ir"
)

// Presenter is the surface edits are rendered to. It matches
// engine.Presenter.
type Presenter interface {
	Apply(e ir.Edit) error
	Verify(expected ir.Snapshot) error
}

// Tape forwards to another presenter and records what it was given.
type Tape struct {
	mu       sync.Mutex
	next     Presenter
	edits    []ir.Edit
	verifies int
	failures int
}

// NewTape wraps next. next may be nil, in which case Tape only records.
func NewTape(next Presenter) *Tape {
	return &Tape{next: next}
}

// Apply records e and forwards it.
func (t *Tape) Apply(e ir.Edit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edits = append(t.edits, e)
	if t.next == nil {
		return nil
	}
	return t.next.Apply(e)
}

// Verify forwards the check and counts failures.
func (t *Tape) Verify(expected ir.Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verifies++
	if t.next == nil {
		return nil
	}
	err := t.next.Verify(expected)
	if err != nil {
		t.failures++
	}
	return err
}

// Edits returns a copy of the recorded edit stream.
func (t *Tape) Edits() []ir.Edit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ir.Edit(nil), t.edits...)
}

// Verifies returns how many times Verify was called and how many failed.
func (t *Tape) Verifies() (calls, failures int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.verifies, t.failures
}
