package engine

import (
	"context"
	"fmt"

	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
)

// Replay re-executes recorded cycles on a fresh board of the given width.
//
// Replay takes the same code path as a live session: every cycle's
// operations go through Session.Apply, so the returned cycles carry the
// edits and hashes a live session would have recorded. Rejections are
// expected outcomes and do not stop the replay; an invariant violation
// does.
//
// The returned snapshot is the board after the last cycle.
func Replay(ctx context.Context, width int, cycles []CycleRecord) ([]CycleRecord, ir.Snapshot, error) {
	sessionID := "replay"
	if len(cycles) > 0 && cycles[0].SessionID != "" {
		sessionID = cycles[0].SessionID
	}

	capture := &captureRecorder{}
	g := game.New(game.WithWidth(width))
	sess := NewSession(g, nil,
		WithSessionID(sessionID),
		WithRecorder(capture),
		WithScheduler(NewScheduler(DefaultTickInterval)),
	)

	for _, c := range cycles {
		if err := ctx.Err(); err != nil {
			return capture.cycles, sess.Snapshot(), err
		}
		_, err := sess.Apply(ctx, c.Operations()...)
		if err != nil && !game.IsRejected(err) {
			return capture.cycles, sess.Snapshot(), fmt.Errorf("replay cycle %d: %w", c.Seq, err)
		}
	}
	return capture.cycles, sess.Snapshot(), nil
}

// VerifyReplay replays recorded and checks every cycle reproduces the
// recorded outcomes, edits and snapshot hash. The first divergence is
// returned as a REPLAY_MISMATCH RuntimeError.
func VerifyReplay(ctx context.Context, width int, recorded []CycleRecord) error {
	replayed, _, err := Replay(ctx, width, recorded)
	if err != nil {
		return err
	}
	for i, want := range recorded {
		if i >= len(replayed) {
			return NewReplayMismatchError(want.SessionID, want.Seq, "cycle missing from replay")
		}
		if err := compareCycle(want, replayed[i]); err != nil {
			return err
		}
	}
	return nil
}

func compareCycle(want, got CycleRecord) error {
	mismatch := func(format string, args ...any) error {
		return NewReplayMismatchError(want.SessionID, want.Seq, format, args...)
	}

	if len(want.Ops) != len(got.Ops) {
		return mismatch("%d operations recorded, %d replayed", len(want.Ops), len(got.Ops))
	}
	for i := range want.Ops {
		w, g := want.Ops[i], got.Ops[i]
		if w.Outcome != g.Outcome || w.Reason != g.Reason {
			return mismatch("operation %s: recorded %s %s, replayed %s %s",
				w.Op, w.Outcome, w.Reason, g.Outcome, g.Reason)
		}
	}

	wantHash, err := ir.EditsHash(want.Edits)
	if err != nil {
		return fmt.Errorf("hash recorded edits: %w", err)
	}
	gotHash, err := ir.EditsHash(got.Edits)
	if err != nil {
		return fmt.Errorf("hash replayed edits: %w", err)
	}
	if wantHash != gotHash {
		return mismatch("edits differ: recorded %d (%s), replayed %d (%s)",
			len(want.Edits), wantHash, len(got.Edits), gotHash)
	}
	if want.SnapshotHash != "" && want.SnapshotHash != got.SnapshotHash {
		return mismatch("snapshot hash differs: recorded %s, replayed %s", want.SnapshotHash, got.SnapshotHash)
	}
	return nil
}

// Restore rebuilds the board of a journaled session by running its
// operations on a fresh game of the given width. Nothing is reconciled:
// a session continuing the journal delivers the board with Sync.
// Recorded rejections are rejected again and skipped.
func Restore(ctx context.Context, width int, cycles []CycleRecord) (*game.Game, error) {
	g := game.New(game.WithWidth(width))
	for _, c := range cycles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, op := range c.Operations() {
			if _, err := execute(g, op); err != nil && !game.IsRejected(err) {
				return nil, fmt.Errorf("restore cycle %d: %w", c.Seq, err)
			}
		}
	}
	return g, nil
}
