package view

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/roach88/tenpair/internal/ir"
)

// Grid is a text rendering surface organised in rows of fixed width.
//
// Grid keeps its own row structure rather than a flat list: a row
// removal drops one row, an append goes to the last row or opens a new
// one. Verify checks the result against the reconciler's snapshot, so a
// wrong edit stream shows up as a mismatch instead of a silently shifted
// board. Grid is safe for concurrent use.
type Grid struct {
	mu     sync.Mutex
	width  int
	rows   [][]ir.SnapshotTile
	frames int
}

// NewGrid creates an empty grid.
func NewGrid(width int) *Grid {
	return &Grid{width: width}
}

// Apply performs one edit.
func (g *Grid) Apply(e ir.Edit) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch e := e.(type) {
	case ir.RowRemoved:
		if e.Row < 0 || e.Row >= len(g.rows) {
			return fmt.Errorf("%s: grid has %d rows", e, len(g.rows))
		}
		if len(g.rows[e.Row]) != g.width {
			return fmt.Errorf("%s: row holds %d of %d tiles", e, len(g.rows[e.Row]), g.width)
		}
		g.rows = slices.Delete(g.rows, e.Row, e.Row+1)
	case ir.TileChanged:
		row, col := e.Position/g.width, e.Position%g.width
		if e.Position < 0 || row >= len(g.rows) || col >= len(g.rows[row]) {
			return fmt.Errorf("%s: no tile at position", e)
		}
		cur := g.rows[row][col]
		if cur.ID != e.Tile.ID {
			return fmt.Errorf("%s: position holds #%d", e, cur.ID)
		}
		g.rows[row][col] = e.Tile
	case ir.TileAppended:
		if n := len(g.rows); n == 0 || len(g.rows[n-1]) == g.width {
			g.rows = append(g.rows, make([]ir.SnapshotTile, 0, g.width))
		}
		last := len(g.rows) - 1
		g.rows[last] = append(g.rows[last], e.Tile)
	default:
		return fmt.Errorf("unknown edit %T", e)
	}
	g.frames++
	return nil
}

// Verify compares the grid with the snapshot it must show.
// Returns a *MismatchError on the first difference.
func (g *Grid) Verify(expected ir.Snapshot) error {
	got := g.Snapshot()
	if len(got) != len(expected) {
		return &MismatchError{Position: min(len(got), len(expected)), WantLen: len(expected), GotLen: len(got)}
	}
	for i := range expected {
		if got[i] != expected[i] {
			return &MismatchError{
				Position: i,
				Want:     expected[i],
				Got:      got[i],
				WantLen:  len(expected),
				GotLen:   len(got),
			}
		}
	}
	return nil
}

// Snapshot flattens the grid into row-major order.
func (g *Grid) Snapshot() ir.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ir.Snapshot(lo.Flatten(g.rows))
}

// Frames returns the number of edits applied.
func (g *Grid) Frames() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rows)
}

// Render writes the grid, one line per row.
//
// Active tiles print as their value, selected tiles in brackets, used
// tiles as a dot. Each cell is three columns wide.
func (g *Grid) Render(w io.Writer) error {
	g.mu.Lock()
	lines := lo.Map(g.rows, func(row []ir.SnapshotTile, _ int) string {
		return strings.Join(lo.Map(row, func(t ir.SnapshotTile, _ int) string {
			return Cell(t)
		}), "")
	})
	g.mu.Unlock()

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// String renders the grid into a string.
func (g *Grid) String() string {
	var b strings.Builder
	_ = g.Render(&b)
	return b.String()
}

// Cell renders one tile as a three-column cell.
func Cell(t ir.SnapshotTile) string {
	switch t.RenderClass {
	case ir.StatusSelected.RenderClass():
		return fmt.Sprintf("[%d]", t.Value)
	case ir.StatusUsed.RenderClass():
		return " . "
	default:
		return fmt.Sprintf(" %d ", t.Value)
	}
}
