package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/ir"
)

func st(id int64, value int, class string) ir.SnapshotTile {
	return ir.SnapshotTile{ID: id, Value: value, RenderClass: class}
}

func active(id int64, value int) ir.SnapshotTile {
	return st(id, value, "sq-active")
}

func appendAll(t *testing.T, g *Grid, tiles ...ir.SnapshotTile) {
	t.Helper()
	for _, tile := range tiles {
		require.NoError(t, g.Apply(ir.TileAppended{Tile: tile}))
	}
}

func TestGrid_AppendsWrapIntoRows(t *testing.T) {
	g := NewGrid(3)
	appendAll(t, g, active(0, 1), active(1, 2), active(2, 3), active(3, 4))

	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 4, g.Frames())
	assert.Equal(t, " 1  2  3\n 4\n", g.String())
}

func TestGrid_ChangeAndRemove(t *testing.T) {
	g := NewGrid(2)
	appendAll(t, g, active(0, 1), active(1, 9), active(2, 5), active(3, 5), active(4, 7))

	require.NoError(t, g.Apply(ir.TileChanged{Position: 0, Tile: st(0, 1, "sq-used")}))
	require.NoError(t, g.Apply(ir.TileChanged{Position: 1, Tile: st(1, 9, "sq-used")}))
	require.NoError(t, g.Apply(ir.TileChanged{Position: 2, Tile: st(2, 5, "sq-selected")}))
	assert.Equal(t, " .  .\n[5] 5\n 7\n", g.String())

	require.NoError(t, g.Apply(ir.RowRemoved{Row: 0}))
	want := ir.Snapshot{st(2, 5, "sq-selected"), active(3, 5), active(4, 7)}
	assert.NoError(t, g.Verify(want))
}

func TestGrid_RejectsEditsThatDoNotFit(t *testing.T) {
	g := NewGrid(3)
	appendAll(t, g, active(0, 1), active(1, 2))

	assert.Error(t, g.Apply(ir.RowRemoved{Row: 0}), "partial row")
	assert.Error(t, g.Apply(ir.RowRemoved{Row: 4}))
	assert.Error(t, g.Apply(ir.TileChanged{Position: 2, Tile: active(2, 3)}))
	assert.Error(t, g.Apply(ir.TileChanged{Position: 1, Tile: active(7, 2)}), "id mismatch")
	assert.Equal(t, 2, g.Frames())
}

func TestGrid_VerifyReportsFirstDifference(t *testing.T) {
	g := NewGrid(3)
	appendAll(t, g, active(0, 1), active(1, 2))

	err := g.Verify(ir.Snapshot{active(0, 1), st(1, 2, "sq-used")})
	require.Error(t, err)
	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 1, me.Position)
	assert.Equal(t, "sq-used", me.Want.RenderClass)
	assert.Equal(t, "sq-active", me.Got.RenderClass)

	err = g.Verify(ir.Snapshot{active(0, 1)})
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
	assert.Contains(t, err.Error(), "shows 2 tiles, want 1")
}

func TestTape_RecordsAndForwards(t *testing.T) {
	g := NewGrid(3)
	tape := NewTape(g)

	require.NoError(t, tape.Apply(ir.TileAppended{Tile: active(0, 4)}))
	require.NoError(t, tape.Verify(ir.Snapshot{active(0, 4)}))
	require.Error(t, tape.Verify(ir.Snapshot{}))

	assert.Equal(t, []ir.Edit{ir.TileAppended{Tile: active(0, 4)}}, tape.Edits())
	calls, failures := tape.Verifies()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, g.Frames())
}

func TestCell(t *testing.T) {
	assert.Equal(t, " 7 ", Cell(active(0, 7)))
	assert.Equal(t, "[7]", Cell(st(0, 7, "sq-selected")))
	assert.Equal(t, " . ", Cell(st(0, 7, "sq-used")))
}
