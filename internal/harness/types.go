package harness

import (
	"fmt"

	"github.com/roach88/tenpair/internal/ir"
)

// TraceOp is one journaled operation in a trace.
type TraceOp struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// TraceEvent is one reconciliation cycle as read back from the journal.
type TraceEvent struct {
	Seq          int64     `json:"seq"`
	Ops          []TraceOp `json:"ops"`
	Edits        []ir.Edit `json:"-"`
	SnapshotHash string    `json:"snapshot_hash"`
	Invariant    string    `json:"invariant,omitempty"`
}

// EditStrings returns the cycle's edits in their String form.
func (e TraceEvent) EditStrings() []string {
	out := make([]string, len(e.Edits))
	for i, edit := range e.Edits {
		out[i] = fmt.Sprint(edit)
	}
	return out
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the journaled cycles in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board is the text grid as the presenter shows it at the end.
	Board string `json:"board"`

	// Tiles is the board length at the end.
	Tiles int `json:"tiles"`

	// Pending is the number of edits not yet rendered.
	Pending int `json:"pending"`

	// Rendered is the number of edits delivered to the presenter.
	Rendered int `json:"rendered"`

	// Verifies is how many times the presenter was verified against the
	// board after the edit queue drained.
	Verifies int `json:"verifies"`

	// PresenterErrors are render and verification failures.
	PresenterErrors []string `json:"presenter_errors,omitempty"`

	// Hint is the lowest matchable pair at the end, or nil.
	Hint []int `json:"hint,omitempty"`

	// ReplayError is set when the journal did not replay faithfully.
	ReplayError string `json:"replay_error,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AllEdits returns every edit of the trace in delivery order.
func (r *Result) AllEdits() []ir.Edit {
	var edits []ir.Edit
	for _, e := range r.Trace {
		edits = append(edits, e.Edits...)
	}
	return edits
}
