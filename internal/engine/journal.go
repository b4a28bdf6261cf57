package engine

import (
	"context"

	"github.com/roach88/tenpair/internal/ir"
)

// Outcome is how the Rule Engine answered one operation.
type Outcome string

const (
	// OutcomeApplied means the operation mutated the board.
	OutcomeApplied Outcome = "applied"

	// OutcomeRejected means the Rule Engine refused the operation.
	OutcomeRejected Outcome = "rejected"
)

// OperationRecord is one operation as the session executed it.
type OperationRecord struct {
	// Seq is the operation's logical sequence number.
	Seq int64

	// Op is the operation itself.
	Op ir.Operation

	// Outcome is applied or rejected.
	Outcome Outcome

	// Reason is the rejection reason, empty when applied.
	Reason string

	// Result is the operation's return value: the new tile id for
	// add_tile, the number of appended tiles for append_generation, else 0.
	Result int64
}

// CycleRecord is one reconciliation cycle: the operations applied in it,
// the edits they produced, and the resulting board hash.
//
// A cycle whose reconciliation failed carries the invariant message and
// no edits. A cycle of rejected operations only carries no edits either.
type CycleRecord struct {
	// SessionID identifies the session.
	SessionID string

	// Seq orders cycles within the session. Operation seqs of the cycle
	// are all greater than Seq.
	Seq int64

	// Ops are the cycle's operations in execution order.
	Ops []OperationRecord

	// Edits are the edits pushed to the edit queue.
	Edits []ir.Edit

	// SnapshotHash is ir.SnapshotHash of the board after the cycle.
	SnapshotHash string

	// Invariant is the invariant violation message, if any.
	Invariant string
}

// Operations returns the cycle's operations without their outcomes.
func (c CycleRecord) Operations() []ir.Operation {
	ops := make([]ir.Operation, len(c.Ops))
	for i, op := range c.Ops {
		ops[i] = op.Op
	}
	return ops
}

// Recorder receives every completed cycle. The store package implements
// it on top of SQLite.
type Recorder interface {
	RecordCycle(ctx context.Context, c CycleRecord) error
}

// captureRecorder keeps cycles in memory. Used by Replay.
type captureRecorder struct {
	cycles []CycleRecord
}

func (r *captureRecorder) RecordCycle(_ context.Context, c CycleRecord) error {
	r.cycles = append(r.cycles, c)
	return nil
}
