package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/reconcile"
)

// Presenter is the rendering surface edits are delivered to.
//
// Apply receives every edit in queue order, one per scheduler tick.
// Verify is called after the edit queue drains with the snapshot the
// presenter must now show; a mismatch is reported as an error.
type Presenter interface {
	Apply(e ir.Edit) error
	Verify(expected ir.Snapshot) error
}

// discardPresenter accepts every edit. Used when no presenter is given.
type discardPresenter struct{}

func (discardPresenter) Apply(ir.Edit) error       { return nil }
func (discardPresenter) Verify(ir.Snapshot) error { return nil }

// Session drives one game: it runs operations on the Rule Engine,
// reconciles the board after each operation, queues the resulting edits and
// schedules one render job per edit.
//
// Operations and render jobs share one mutex, so the caller's goroutine
// and the scheduler goroutine observe a single total order. A Presenter
// is always called with that mutex held and must not call back into the
// Session.
type Session struct {
	mu sync.Mutex

	id        string
	game      *game.Game
	rec       *reconcile.Reconciler
	edits     *EditQueue
	sched     *Scheduler
	presenter Presenter
	recorder  Recorder
	clock     SeqClock
	idGen     SessionIDGenerator

	rendered int
	errs     []error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithScheduler sets the scheduler render jobs go to.
// Default: NewScheduler(DefaultTickInterval).
func WithScheduler(s *Scheduler) SessionOption {
	return func(sess *Session) {
		sess.sched = s
	}
}

// WithRecorder hands every cycle to r (the journal).
func WithRecorder(r Recorder) SessionOption {
	return func(sess *Session) {
		sess.recorder = r
	}
}

// WithSessionID fixes the session id.
func WithSessionID(id string) SessionOption {
	return func(sess *Session) {
		sess.id = id
	}
}

// WithIDGenerator sets the generator used when no session id is fixed.
// Default: UUIDv7Generator.
func WithIDGenerator(gen SessionIDGenerator) SessionOption {
	return func(sess *Session) {
		sess.idGen = gen
	}
}

// WithClock sets the logical clock cycles and operations are stamped with.
func WithClock(c SeqClock) SessionOption {
	return func(sess *Session) {
		sess.clock = c
	}
}

// NewSession creates a session over g. The presenter may be nil.
//
// The reconciler starts from an empty delivered snapshot, so a game that
// already holds tiles is delivered in full by the first cycle (or Sync).
func NewSession(g *game.Game, p Presenter, opts ...SessionOption) *Session {
	if p == nil {
		p = discardPresenter{}
	}
	s := &Session{
		game:      g,
		rec:       reconcile.New(g.Width()),
		edits:     NewEditQueue(),
		presenter: p,
		clock:     NewClock(),
		idGen:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sched == nil {
		s.sched = NewScheduler(DefaultTickInterval)
	}
	if s.id == "" {
		s.id = s.idGen.Generate()
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Width returns the board's row width.
func (s *Session) Width() int {
	return s.game.Width()
}

// Scheduler returns the scheduler render jobs are queued on.
func (s *Session) Scheduler() *Scheduler {
	return s.sched
}

// Pending returns the number of edits not yet rendered.
func (s *Session) Pending() int {
	return s.edits.Len()
}

// Rendered returns the number of edits delivered to the presenter.
func (s *Session) Rendered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered
}

// Snapshot returns the current board snapshot.
func (s *Session) Snapshot() ir.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Delivered returns the snapshot the presenter shows once every queued
// edit has been rendered.
func (s *Session) Delivered() ir.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Last()
}

// Inspect calls fn with the game under the session lock. fn must only
// query the game; mutations bypass reconciliation.
func (s *Session) Inspect(fn func(g *game.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Errors returns the render and verification failures seen so far.
func (s *Session) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// AddTile appends a tile and returns its id.
func (s *Session) AddTile(ctx context.Context, value int) (int64, error) {
	c, err := s.Apply(ctx, ir.AddTile(value))
	if err != nil {
		return 0, err
	}
	return c.Ops[0].Result, nil
}

// ToggleSelect toggles the selection of tile id.
func (s *Session) ToggleSelect(ctx context.Context, id int64) error {
	_, err := s.Apply(ctx, ir.ToggleSelect(id))
	return err
}

// UseSelectedPair consumes the two selected tiles.
func (s *Session) UseSelectedPair(ctx context.Context) error {
	_, err := s.Apply(ctx, ir.UseSelectedPair())
	return err
}

// RemoveRow removes a fully used row.
func (s *Session) RemoveRow(ctx context.Context, row int) error {
	_, err := s.Apply(ctx, ir.RemoveRow(row))
	return err
}

// AppendGeneration copies the unused tiles to the tail and returns how
// many were appended.
func (s *Session) AppendGeneration(ctx context.Context) (int, error) {
	c, err := s.Apply(ctx, ir.AppendGeneration())
	if err != nil {
		return 0, err
	}
	return int(c.Ops[0].Result), nil
}

// Apply runs ops in order as one cycle, reconciling after every applied
// operation. The cycle's edits are the concatenation of those diffs.
//
// The cycle stops at the first rejected operation and returns its
// *game.RejectedError; operations applied before it still reach the
// presentation. A reconciliation failure stops the cycle too: it is
// returned as an invariant RuntimeError and the failing operation queues
// nothing. Every cycle with at least one
// operation is handed to the Recorder, rejected or not.
func (s *Session) Apply(ctx context.Context, ops ...ir.Operation) (CycleRecord, error) {
	if len(ops) == 0 {
		return CycleRecord{}, nil
	}
	for _, op := range ops {
		if err := checkKind(op.Kind); err != nil {
			return CycleRecord{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cycle := CycleRecord{SessionID: s.id, Seq: s.clock.Next()}
	var opErr error
	for _, op := range ops {
		rec := OperationRecord{Seq: s.clock.Next(), Op: op, Outcome: OutcomeApplied}
		result, err := execute(s.game, op)
		if err != nil {
			rec.Outcome = OutcomeRejected
			rec.Reason = string(game.ReasonOf(err))
			cycle.Ops = append(cycle.Ops, rec)
			opErr = err
			slog.Debug("operation rejected",
				"session", s.id,
				"seq", rec.Seq,
				"op", op.String(),
				"reason", rec.Reason,
			)
			break
		}
		rec.Result = result
		cycle.Ops = append(cycle.Ops, rec)

		// Each operation is reconciled on its own: a later operation in
		// the batch may remove a row whose tiles an earlier one appended.
		if err := s.reconcileLocked(&cycle); err != nil {
			opErr = err
			break
		}
	}
	if cycle.SnapshotHash == "" {
		h, err := ir.SnapshotHash(s.game.Snapshot())
		if err != nil {
			return cycle, fmt.Errorf("hash snapshot: %w", err)
		}
		cycle.SnapshotHash = h
	}

	if s.recorder != nil {
		if err := s.recorder.RecordCycle(ctx, cycle); err != nil {
			slog.Error("record cycle failed",
				"session", s.id,
				"cycle", cycle.Seq,
				"error", err,
			)
			if opErr == nil {
				opErr = fmt.Errorf("record cycle %d: %w", cycle.Seq, err)
			}
		}
	}
	return cycle, opErr
}

// Sync reconciles the board without running an operation, delivering
// tiles the game held before the session was created. Sync cycles are not
// recorded: journals replay from an empty board.
func (s *Session) Sync() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycle := CycleRecord{SessionID: s.id, Seq: s.clock.Next()}
	if err := s.reconcileLocked(&cycle); err != nil {
		return 0, err
	}
	return len(cycle.Edits), nil
}

// reconcileLocked diffs the board against the delivered snapshot, queues
// the edits and schedules their render jobs. Callers hold s.mu.
func (s *Session) reconcileLocked(cycle *CycleRecord) error {
	snap := s.game.Snapshot()
	edits, err := s.rec.Reconcile(snap)
	if err != nil {
		cycle.Invariant = err.Error()
		slog.Error("reconciliation invariant violated",
			"session", s.id,
			"cycle", cycle.Seq,
			"code", reconcile.CodeOf(err),
			"error", err,
			"event", "invariant_violation",
		)
		return NewInvariantError(s.id, cycle.Seq, err)
	}

	h, err := ir.SnapshotHash(snap)
	if err != nil {
		return fmt.Errorf("hash snapshot: %w", err)
	}
	cycle.Edits = append(cycle.Edits, edits...)
	cycle.SnapshotHash = h

	// All edits are queued before any render job can observe the queue.
	s.edits.Push(edits...)
	for range edits {
		s.sched.Schedule(s.render)
	}

	slog.Debug("cycle reconciled",
		"session", s.id,
		"cycle", cycle.Seq,
		"ops", len(cycle.Ops),
		"edits", len(edits),
		"pending", s.edits.Len(),
	)
	return nil
}

// render is the scheduled job: pop one edit, hand it to the presenter,
// and verify the presenter once the queue has drained.
func (s *Session) render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edits.Pop()
	if !ok {
		err := NewQueueUnderflowError(s.id)
		s.errs = append(s.errs, err)
		return err
	}
	if err := s.presenter.Apply(e); err != nil {
		perr := NewPresenterError(s.id, fmt.Errorf("apply %s: %w", e, err))
		s.errs = append(s.errs, perr)
		return perr
	}
	s.rendered++

	if s.edits.Len() == 0 {
		if err := s.presenter.Verify(s.rec.Last()); err != nil {
			perr := NewPresenterError(s.id, fmt.Errorf("verify after %d edits: %w", s.rendered, err))
			s.errs = append(s.errs, perr)
			return perr
		}
	}
	return nil
}

func checkKind(kind ir.OpKind) error {
	switch kind {
	case ir.OpAddTile, ir.OpToggleSelect, ir.OpUseSelectedPair, ir.OpRemoveRow, ir.OpAppendGeneration:
		return nil
	default:
		return fmt.Errorf("unknown operation %q", kind)
	}
}

// execute runs one operation on g. The result is the new tile id for
// add_tile and the number of appended tiles for append_generation.
func execute(g *game.Game, op ir.Operation) (int64, error) {
	switch op.Kind {
	case ir.OpAddTile:
		return g.AddTile(op.Value)
	case ir.OpToggleSelect:
		return 0, g.ToggleSelect(op.TileID)
	case ir.OpUseSelectedPair:
		return 0, g.UseSelectedPair()
	case ir.OpRemoveRow:
		return 0, g.RemoveRow(op.Row)
	case ir.OpAppendGeneration:
		n, err := g.AppendGeneration()
		return int64(n), err
	default:
		return 0, fmt.Errorf("unknown operation %q", op.Kind)
	}
}
