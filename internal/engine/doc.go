// Package engine drives a tenpair game and animates its board.
//
// A Session owns one game.Game and one reconcile.Reconciler. Every call
// (AddTile, ToggleSelect, UseSelectedPair, RemoveRow, AppendGeneration or
// a batch through Apply) is one cycle:
//
//  1. The operations run on the Rule Engine. A rejection stops the cycle
//     and is returned unchanged.
//  2. The board snapshot is reconciled against the last delivered one.
//  3. The edits are pushed to the EditQueue and one render job per edit
//     is scheduled.
//  4. The cycle is stamped with a logical seq and handed to the Recorder.
//
// The Scheduler runs one job per tick. A render job pops one edit and
// gives it to the Presenter; once the queue drains, the Presenter is
// asked to verify it shows the reconciler's last snapshot.
//
// CRITICAL PATTERNS:
//
// Logical clock: cycles and operations are ordered by Clock seq values,
// never by wall-clock time.
//
// Single writer: operations and render jobs hold the session mutex for
// their whole duration, so the board, the reconciler and the presenter
// always observe one total order.
//
// Replay: Replay re-executes a journal through Session.Apply, the same
// path a live session takes, and VerifyReplay compares edits and
// snapshot hashes cycle by cycle.
package engine
