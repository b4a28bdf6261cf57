package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Kind      string // optional - only cycles with this operation kind
}

// TraceOp is one operation in the timeline.
type TraceOp struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Result  int64  `json:"result,omitempty"`
}

// TraceCycle is one reconciliation cycle in the timeline.
type TraceCycle struct {
	Seq          int64     `json:"seq"`
	Ops          []TraceOp `json:"ops"`
	Edits        []string  `json:"edits"`
	SnapshotHash string    `json:"snapshot_hash"`
	Invariant    string    `json:"invariant,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	Width    int          `json:"width"`
	Timeline []TraceCycle `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Cycles     int `json:"cycles"`
	Operations int `json:"operations"`
	Rejected   int `json:"rejected"`
	Edits      int `json:"edits"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the operation and edit timeline of a session",
		Long: `Print a journaled session cycle by cycle: each operation with its
outcome and rejection reason, followed by the edits the cycle queued for
the presentation.

Examples:
  tenpair trace --db ./tenpair.db --session 0190...
  tenpair trace --db ./tenpair.db --session 0190... --kind remove_row
  tenpair trace --db ./tenpair.db --session 0190... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session to trace (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only cycles with this operation kind (e.g. use_selected_pair)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := st.ReadSession(ctx, opts.SessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session %s not found", opts.SessionID), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("session %s not found", opts.SessionID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	cycles, err := st.ReadCycles(ctx, info.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{
		Session:  info.ID,
		Width:    info.Width,
		Timeline: buildTimeline(cycles, opts.Kind),
	}
	for _, c := range cycles {
		result.Stats.Cycles++
		result.Stats.Operations += len(c.Ops)
		result.Stats.Edits += len(c.Edits)
		result.Stats.Rejected += lo.CountBy(c.Ops, func(op engine.OperationRecord) bool {
			return op.Outcome == engine.OutcomeRejected
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

// buildTimeline converts journal cycles to timeline entries. When kind is
// set, only cycles containing an operation of that kind are kept.
func buildTimeline(cycles []engine.CycleRecord, kind string) []TraceCycle {
	timeline := make([]TraceCycle, 0, len(cycles))
	for _, c := range cycles {
		if kind != "" && !lo.ContainsBy(c.Ops, func(op engine.OperationRecord) bool {
			return string(op.Op.Kind) == kind
		}) {
			continue
		}

		timeline = append(timeline, TraceCycle{
			Seq: c.Seq,
			Ops: lo.Map(c.Ops, func(op engine.OperationRecord, _ int) TraceOp {
				return TraceOp{
					Seq:     op.Seq,
					Op:      op.Op.String(),
					Outcome: string(op.Outcome),
					Reason:  op.Reason,
					Result:  op.Result,
				}
			}),
			Edits:        lo.Map(c.Edits, func(e ir.Edit, _ int) string { return fmt.Sprint(e) }),
			SnapshotHash: c.SnapshotHash,
			Invariant:    c.Invariant,
		})
	}
	return timeline
}

func outputTraceText(f *OutputFormatter, result TraceResult) {
	f.Printf("Session: %s (width %d)\n\n", result.Session, result.Width)
	if len(result.Timeline) == 0 {
		f.Printf("No cycles recorded.\n")
		return
	}

	for _, c := range result.Timeline {
		f.Printf("cycle %d\n", c.Seq)
		for _, op := range c.Ops {
			f.Printf("  [%d] %s %s", op.Seq, op.Op, op.Outcome)
			if op.Reason != "" {
				f.Printf(" %s", op.Reason)
			}
			f.Printf("\n")
		}
		for _, e := range c.Edits {
			f.Printf("    -> %s\n", e)
		}
		if c.Invariant != "" {
			f.Printf("    !! %s\n", c.Invariant)
		}
		if f.Verbose {
			f.Printf("    snapshot %s\n", c.SnapshotHash)
		}
	}

	f.Printf("\nStats: %d cycles, %d operations (%d rejected), %d edits\n",
		result.Stats.Cycles, result.Stats.Operations, result.Stats.Rejected, result.Stats.Edits)
}
