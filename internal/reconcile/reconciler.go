package reconcile

import (
	"github.com/roach88/tenpair/internal/ir"
)

// Reconciler holds the last snapshot delivered to the presentation layer
// and turns each new board snapshot into the edits that reach it.
//
// A Reconciler is owned by a single caller; it is not safe for concurrent use.
type Reconciler struct {
	width int
	last  ir.Snapshot
}

// New creates a Reconciler whose last delivered snapshot is empty.
func New(width int) *Reconciler {
	return &Reconciler{width: width, last: ir.Snapshot{}}
}

// Width returns the row width used for row removals.
func (r *Reconciler) Width() int {
	return r.width
}

// Reconcile diffs next against the last delivered snapshot.
//
// On success the last delivered snapshot becomes next and the edits are
// returned in delivery order. On an invariant violation no edits are
// returned and the last delivered snapshot is left untouched, so the
// caller can halt the cycle without corrupting the presentation.
func (r *Reconciler) Reconcile(next ir.Snapshot) ([]ir.Edit, error) {
	edits, working, err := Diff(r.last, next, r.width)
	if err != nil {
		return nil, err
	}
	r.last = working
	return edits, nil
}

// Last returns a copy of the last delivered snapshot.
func (r *Reconciler) Last() ir.Snapshot {
	return r.last.Clone()
}

// Reset replaces the last delivered snapshot, e.g. after the presentation
// layer was rebuilt from scratch.
func (r *Reconciler) Reset(s ir.Snapshot) {
	r.last = s.Clone()
}
