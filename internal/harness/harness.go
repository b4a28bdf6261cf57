package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/store"
	"github.com/roach88/tenpair/internal/testutil"
	"github.com/roach88/tenpair/internal/view"
)

// Harness runs one scenario against a real session.
type Harness struct {
	store   *store.Store
	session *engine.Session
	grid    *view.Grid
	tape    *view.Tape
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal with a deterministic
// clock, so traces are identical across runs.
//
// Execution flow:
//  1. Create fresh in-memory journal
//  2. Add the layout as one cycle and render it
//  3. Execute steps with expect validation
//  4. Read the trace back from the journal
//  5. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	grid := view.NewGrid(scenario.Width)
	tape := view.NewTape(grid)
	// Ticks are driven by the steps, never by Run.
	sched := engine.NewScheduler(engine.DefaultTickInterval)
	sess := engine.NewSession(game.New(game.WithWidth(scenario.Width)), tape,
		engine.WithSessionID(scenario.SessionID),
		engine.WithScheduler(sched),
		engine.WithRecorder(store.NewRecorder(st, scenario.Width)),
		engine.WithClock(testutil.NewDeterministicClock()),
	)
	h := &Harness{store: st, session: sess, grid: grid, tape: tape}

	result := NewResult()
	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// setup adds the starting layout as a single cycle and renders it.
func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	layout := scenario.Layout
	if scenario.Classic {
		layout = game.ClassicLayout()
	}
	if len(layout) == 0 {
		return nil
	}

	ops := make([]ir.Operation, len(layout))
	for i, v := range layout {
		ops[i] = ir.AddTile(v)
	}
	if _, err := h.session.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	h.session.Scheduler().Drain()
	return nil
}

// execute runs one step. Step failures are recorded on result; the
// returned error is reserved for harness faults.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) error {
	switch step.Op {
	case StepTick:
		n := step.Count
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			h.session.Scheduler().Step()
		}
		return nil
	case StepDrain:
		h.session.Scheduler().Drain()
		return nil
	}

	op, err := h.operation(step)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: %v", index, err))
		return nil
	}

	cycle, err := h.session.Apply(ctx, op)
	if err != nil && !game.IsRejected(err) {
		return err
	}
	for _, msg := range checkExpect(step.Expect, cycle) {
		result.AddError(fmt.Sprintf("steps[%d] %s: %s", index, op, msg))
	}
	return nil
}

// operation builds the step's operation. pick resolves a board position
// to the id of the tile currently there.
func (h *Harness) operation(step Step) (ir.Operation, error) {
	switch step.Op {
	case StepAdd:
		return ir.AddTile(*step.Value), nil
	case StepToggle:
		return ir.ToggleSelect(*step.ID), nil
	case StepPick:
		var (
			tile ir.Tile
			ok   bool
		)
		h.session.Inspect(func(g *game.Game) {
			tile, ok = g.TileAt(*step.Pos)
		})
		if !ok {
			return ir.Operation{}, fmt.Errorf("pick: no tile at position %d", *step.Pos)
		}
		return ir.ToggleSelect(tile.ID), nil
	case StepUse:
		return ir.UseSelectedPair(), nil
	case StepRemove:
		return ir.RemoveRow(*step.Row), nil
	case StepAppend:
		return ir.AppendGeneration(), nil
	default:
		return ir.Operation{}, fmt.Errorf("unknown op %q", step.Op)
	}
}

// checkExpect compares a step's cycle against its expect clause. Without
// a clause the step must have been applied.
func checkExpect(expect *ExpectClause, cycle engine.CycleRecord) []string {
	if len(cycle.Ops) == 0 {
		return []string{"no operation recorded"}
	}
	rec := cycle.Ops[len(cycle.Ops)-1]

	if expect == nil {
		if rec.Outcome != engine.OutcomeApplied {
			return []string{fmt.Sprintf("unexpected rejection: %s", rec.Reason)}
		}
		return nil
	}

	var errs []string
	if string(rec.Outcome) != expect.Outcome {
		errs = append(errs, fmt.Sprintf("outcome: expected %s, got %s (%s)", expect.Outcome, rec.Outcome, rec.Reason))
	}
	if expect.Reason != "" && rec.Reason != expect.Reason {
		errs = append(errs, fmt.Sprintf("reason: expected %s, got %q", expect.Reason, rec.Reason))
	}
	if expect.Result != nil && rec.Result != *expect.Result {
		errs = append(errs, fmt.Sprintf("result: expected %d, got %d", *expect.Result, rec.Result))
	}
	if expect.Edits != nil {
		got := TraceEvent{Edits: cycle.Edits}.EditStrings()
		if !slices.Equal(got, expect.Edits) {
			errs = append(errs, fmt.Sprintf("edits: expected %v, got %v", expect.Edits, got))
		}
	}
	return errs
}

// collect reads the journal back into the trace and records the final
// session state.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	cycles, err := h.store.ReadCycles(ctx, h.session.ID())
	if err != nil {
		return fmt.Errorf("read trace: %w", err)
	}
	for _, c := range cycles {
		ev := TraceEvent{
			Seq:          c.Seq,
			Ops:          make([]TraceOp, len(c.Ops)),
			Edits:        c.Edits,
			SnapshotHash: c.SnapshotHash,
			Invariant:    c.Invariant,
		}
		for i, op := range c.Ops {
			ev.Ops[i] = TraceOp{Seq: op.Seq, Op: op.Op.String(), Outcome: string(op.Outcome), Reason: op.Reason}
		}
		result.Trace = append(result.Trace, ev)
	}

	if err := engine.VerifyReplay(ctx, h.session.Width(), cycles); err != nil {
		result.ReplayError = err.Error()
	}

	result.Board = h.grid.String()
	result.Pending = h.session.Pending()
	result.Rendered = h.session.Rendered()
	result.Verifies, _ = h.tape.Verifies()
	for _, err := range h.session.Errors() {
		result.PresenterErrors = append(result.PresenterErrors, err.Error())
	}
	h.session.Inspect(func(g *game.Game) {
		result.Tiles = g.Len()
		if i, j, ok := g.FindMatchablePair(); ok {
			result.Hint = []int{i, j}
		}
	})
	return nil
}
