package reconcile

import (
	"slices"

	"github.com/roach88/tenpair/internal/ir"
)

// Phase names used in InvariantError.
const (
	PhaseRowRemoval = "row_removal"
	PhaseChange     = "change"
	PhaseAppend     = "append"
	PhaseVerify     = "verify"
)

// Diff computes the ordered edits that turn prev into next.
//
// The edits come in three phases: row removals, then per-position class
// changes, then tail appends. It returns the edits together with the
// working snapshot they produce, which equals next on success. Neither
// input is modified.
//
// Diff relies on the board discipline: tiles are only appended at the tail
// or removed as whole aligned rows. Anything else is reported as an
// *InvariantError and no edits are returned.
func Diff(prev, next ir.Snapshot, width int) ([]ir.Edit, ir.Snapshot, error) {
	if width <= 0 {
		return nil, nil, violation(CodeDiverged, PhaseRowRemoval, -1, "width %d", width)
	}

	var edits []ir.Edit
	working := prev.Clone()

	removed, working, err := removeRows(working, next, width)
	if err != nil {
		return nil, nil, err
	}
	edits = append(edits, removed...)

	changed, working, err := changeTiles(working, next)
	if err != nil {
		return nil, nil, err
	}
	edits = append(edits, changed...)

	appended, working, err := appendTiles(working, next)
	if err != nil {
		return nil, nil, err
	}
	edits = append(edits, appended...)

	if !working.Equal(next) {
		return nil, nil, violation(CodeDiverged, PhaseVerify, -1,
			"working snapshot has %d tiles, target has %d", len(working), len(next))
	}
	if len(edits) == 0 && !prev.Equal(next) {
		return nil, nil, violation(CodeNoEdits, PhaseVerify, -1, "snapshots differ but no edits produced")
	}
	return edits, working, nil
}

// removeRows emits RowRemoved for every row of working whose first tile
// no longer starts the same position in next.
//
// Rows are compared by the id of their first tile. A larger id in next
// means the row was removed; after each removal the scan restarts at row
// 0 because later rows have shifted up.
func removeRows(working, next ir.Snapshot, width int) ([]ir.Edit, ir.Snapshot, error) {
	var edits []ir.Edit
	for {
		row, err := firstRemovedRow(working, next, width)
		if err != nil {
			return nil, nil, err
		}
		if row < 0 {
			return edits, working, nil
		}
		start := row * width
		if start+width > len(working) {
			return nil, nil, violation(CodePartialRow, PhaseRowRemoval, start,
				"row %d holds only %d tiles", row, len(working)-start)
		}
		working = slices.Delete(working, start, start+width)
		edits = append(edits, ir.RowRemoved{Row: row})
	}
}

// firstRemovedRow returns the first removed row index, or -1 if none.
func firstRemovedRow(working, next ir.Snapshot, width int) (int, error) {
	for row := 0; ; row++ {
		pos := row * width
		if pos >= len(working) {
			return -1, nil
		}
		if pos >= len(next) {
			return 0, violation(CodeMissingRow, PhaseRowRemoval, pos,
				"row %d (tile #%d) missing from new snapshot of %d tiles", row, working[pos].ID, len(next))
		}
		prevID, nextID := working[pos].ID, next[pos].ID
		switch {
		case nextID > prevID:
			return row, nil
		case nextID < prevID:
			return 0, violation(CodeIDRegression, PhaseRowRemoval, pos,
				"row %d starts with #%d, new snapshot has #%d", row, prevID, nextID)
		}
	}
}

// changeTiles emits TileChanged for every common position whose render
// class differs. Ids and values at common positions must agree.
func changeTiles(working, next ir.Snapshot) ([]ir.Edit, ir.Snapshot, error) {
	var edits []ir.Edit
	common := min(len(working), len(next))
	for pos := 0; pos < common; pos++ {
		w, n := working[pos], next[pos]
		if w.ID != n.ID || w.Value != n.Value {
			return nil, nil, violation(CodeTileMismatch, PhaseChange, pos,
				"delivered #%d=%d, new #%d=%d", w.ID, w.Value, n.ID, n.Value)
		}
		if w.RenderClass != n.RenderClass {
			working[pos] = n
			edits = append(edits, ir.TileChanged{Position: pos, Tile: n})
		}
	}
	return edits, working, nil
}

// appendTiles emits TileAppended for every position of next beyond working.
func appendTiles(working, next ir.Snapshot) ([]ir.Edit, ir.Snapshot, error) {
	if len(working) > len(next) {
		return nil, nil, violation(CodeLengthRegression, PhaseAppend, len(next),
			"delivered snapshot has %d tiles after row removals, new has %d", len(working), len(next))
	}
	var edits []ir.Edit
	for pos := len(working); pos < len(next); pos++ {
		working = append(working, next[pos])
		edits = append(edits, ir.TileAppended{Tile: next[pos]})
	}
	return edits, working, nil
}
