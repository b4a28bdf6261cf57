// Package reconcile translates board snapshots into presentation edits.
//
// Diff is a pure function from (delivered snapshot, new snapshot) to an
// ordered edit list. It exploits the board discipline that tiles are only
// appended at the tail or removed as whole aligned rows, so three phases
// suffice:
//
//  1. Row removal: leading row ids are compared; a larger id in the new
//     snapshot means the row is gone.
//  2. Change: common positions whose render class differs.
//  3. Append: positions past the end of the delivered snapshot.
//
// Replaying the edits over the delivered snapshot always yields the new
// snapshot. When it would not, Diff returns an *InvariantError instead of
// a partial edit list.
//
// Reconciler wraps Diff with the "last delivered snapshot" state.
package reconcile
