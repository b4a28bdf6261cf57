package reconcile

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
)

func kinds(edits []ir.Edit) []ir.EditKind {
	out := make([]ir.EditKind, len(edits))
	for i, e := range edits {
		out[i] = e.Kind()
	}
	return out
}

func countKind(edits []ir.Edit, kind ir.EditKind) int {
	n := 0
	for _, e := range edits {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

func use(t *testing.T, g *game.Game, i, j int) {
	t.Helper()
	a, _ := g.TileAt(i)
	b, _ := g.TileAt(j)
	require.NoError(t, g.ToggleSelect(a.ID))
	require.NoError(t, g.ToggleSelect(b.ID))
	require.NoError(t, g.UseSelectedPair())
}

func pairsGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.NewWithValues([]int{
		1, 9, 2, 8, 3, 7, 4, 6, 5,
		5, 1, 2, 3, 4, 5, 6, 7, 8,
		9, 8, 7, 6, 5, 4, 3, 2, 1,
	})
	require.NoError(t, err)
	return g
}

func TestReconcile_ClassicOpeningFromEmpty(t *testing.T) {
	g, err := game.NewWithValues(game.ClassicLayout())
	require.NoError(t, err)
	r := New(game.DefaultWidth)

	edits, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	require.Len(t, edits, 27)
	assert.Equal(t, 27, countKind(edits, ir.EditTileAppended))
	assert.Zero(t, countKind(edits, ir.EditTileChanged))
	assert.Zero(t, countKind(edits, ir.EditRowRemoved))
	assert.True(t, r.Last().Equal(g.Snapshot()))
}

func TestReconcile_NoChangeNoEdits(t *testing.T) {
	g, err := game.NewWithValues(game.ClassicLayout())
	require.NoError(t, err)
	r := New(game.DefaultWidth)
	_, err = r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	edits, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestReconcile_ToggleProducesSingleChange(t *testing.T) {
	g, err := game.NewWithValues(game.ClassicLayout())
	require.NoError(t, err)
	r := New(game.DefaultWidth)
	_, err = r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	require.NoError(t, g.ToggleSelect(5))
	edits, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	require.Len(t, edits, 1)
	change, ok := edits[0].(ir.TileChanged)
	require.True(t, ok)
	assert.Equal(t, 5, change.Position)
	assert.Equal(t, "sq-selected", change.Tile.RenderClass)
}

func TestReconcile_RemovedLeadingRowComesFirst(t *testing.T) {
	g := pairsGame(t)
	r := New(game.DefaultWidth)
	_, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	for _, p := range [][2]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8, 9}} {
		use(t, g, p[0], p[1])
		_, err := r.Reconcile(g.Snapshot())
		require.NoError(t, err)
	}

	require.True(t, g.CanRemoveRow(0))
	require.NoError(t, g.RemoveRow(0))

	edits, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)
	require.Equal(t, []ir.Edit{ir.RowRemoved{Row: 0}}, edits)
}

func TestReconcile_RowRemovalThenChangesThenAppends(t *testing.T) {
	g := pairsGame(t)
	r := New(game.DefaultWidth)
	_, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	for _, p := range [][2]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8, 9}} {
		use(t, g, p[0], p[1])
	}
	require.NoError(t, g.RemoveRow(0))
	_, err = g.AppendGeneration()
	require.NoError(t, err)

	edits, err := r.Reconcile(g.Snapshot())
	require.NoError(t, err)

	// Row 0 was never delivered as used: it is removed outright. Position 0
	// of the shifted board (the 5 that closed the row) changes class.
	ks := kinds(edits)
	require.NotEmpty(t, ks)
	assert.Equal(t, ir.EditRowRemoved, ks[0])
	assert.Equal(t, 1, countKind(edits, ir.EditRowRemoved))
	assert.Equal(t, 1, countKind(edits, ir.EditTileChanged))
	assert.Equal(t, 17, countKind(edits, ir.EditTileAppended))
	for i := 1; i < len(ks); i++ {
		assert.LessOrEqual(t, phaseRank(ks[i-1]), phaseRank(ks[i]), "phase order at %d", i)
	}
}

func phaseRank(k ir.EditKind) int {
	switch k {
	case ir.EditRowRemoved:
		return 0
	case ir.EditTileChanged:
		return 1
	default:
		return 2
	}
}

func TestDiff_NonLeadingRowRemoval(t *testing.T) {
	prev := snapshotOfIDs(0, 36)
	next := append(snapshotOfIDs(0, 3), snapshotOfIDs(6, 36)...)

	edits, working, err := Diff(prev, next, 3)
	require.NoError(t, err)
	assert.Equal(t, []ir.Edit{ir.RowRemoved{Row: 1}}, edits)
	assert.True(t, working.Equal(next))
}

func TestDiff_ConsecutiveRowRemovals(t *testing.T) {
	prev := snapshotOfIDs(0, 12)
	next := snapshotOfIDs(6, 12)

	edits, _, err := Diff(prev, next, 3)
	require.NoError(t, err)
	assert.Equal(t, []ir.Edit{ir.RowRemoved{Row: 0}, ir.RowRemoved{Row: 0}}, edits)
}

func TestDiff_DoesNotMutateInputs(t *testing.T) {
	prev := snapshotOfIDs(0, 9)
	next := snapshotOfIDs(3, 12)
	next[0].RenderClass = "sq-used"
	prevCopy, nextCopy := prev.Clone(), next.Clone()

	_, _, err := Diff(prev, next, 3)
	require.NoError(t, err)
	assert.Equal(t, prevCopy, prev)
	assert.Equal(t, nextCopy, next)
}

func TestDiff_InvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		prev ir.Snapshot
		next ir.Snapshot
		code InvariantCode
	}{
		{
			name: "id regression",
			prev: snapshotOfIDs(3, 9),
			next: snapshotOfIDs(0, 9),
			code: CodeIDRegression,
		},
		{
			name: "row missing",
			prev: snapshotOfIDs(0, 6),
			next: snapshotOfIDs(0, 2),
			code: CodeMissingRow,
		},
		{
			name: "value changed in place",
			prev: snapshotOfIDs(0, 3),
			next: func() ir.Snapshot {
				s := snapshotOfIDs(0, 3)
				s[1].Value = 9
				return s
			}(),
			code: CodeTileMismatch,
		},
		{
			name: "tile dropped from the middle of a row",
			prev: snapshotOfIDs(0, 3),
			next: ir.Snapshot{tileOf(0), tileOf(2)},
			code: CodeTileMismatch,
		},
		{
			name: "tail shrank",
			prev: snapshotOfIDs(0, 5),
			next: snapshotOfIDs(0, 4),
			code: CodeLengthRegression,
		},
		{
			name: "partial row removed",
			prev: snapshotOfIDs(0, 5),
			next: append(snapshotOfIDs(0, 3), tileOf(7)),
			code: CodePartialRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits, working, err := Diff(tt.prev, tt.next, 3)
			require.Error(t, err)
			assert.True(t, IsInvariant(err))
			assert.Equal(t, tt.code, CodeOf(err))
			assert.Nil(t, edits)
			assert.Nil(t, working)
		})
	}
}

func TestReconciler_ErrorKeepsLastSnapshot(t *testing.T) {
	r := New(3)
	_, err := r.Reconcile(snapshotOfIDs(3, 9))
	require.NoError(t, err)
	before := r.Last()

	_, err = r.Reconcile(snapshotOfIDs(0, 9))
	require.Error(t, err)
	assert.Equal(t, before, r.Last())

	r.Reset(nil)
	assert.Empty(t, r.Last())
}

// Replaying every emitted edit over an empty snapshot reproduces the
// board, for any sequence of valid operations.
func TestReconcile_RoundTripLaw(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		g, err := game.NewWithValues(game.ClassicLayout())
		require.NoError(t, err)
		r := New(g.Width())
		replayed := ir.Snapshot{}

		for step := 0; step < 150; step++ {
			before := g.Len()
			removable := g.RemovableRows()
			randomOperation(rng, g)

			edits, err := r.Reconcile(g.Snapshot())
			require.NoError(t, err, "seed %d step %d", seed, step)

			for _, e := range edits {
				if rr, ok := e.(ir.RowRemoved); ok {
					assert.Contains(t, removable, rr.Row, "seed %d step %d: row not removable before", seed, step)
				}
			}
			replayed, err = ir.ApplyEdits(replayed, edits, g.Width())
			require.NoError(t, err)
			require.True(t, replayed.Equal(g.Snapshot()), "seed %d step %d", seed, step)
			assert.GreaterOrEqual(t, g.Len(), before-g.Width())
		}
	}
}

// randomOperation applies one operation, favouring ones that make progress.
func randomOperation(rng *rand.Rand, g *game.Game) {
	switch rng.IntN(6) {
	case 0:
		_, _ = g.AddTile(1 + rng.IntN(9))
	case 1:
		if g.Len() > 0 {
			t, _ := g.TileAt(rng.IntN(g.Len()))
			_ = g.ToggleSelect(t.ID)
		}
	case 2:
		if rows := g.RemovableRows(); len(rows) > 0 {
			_ = g.RemoveRow(rows[rng.IntN(len(rows))])
		}
	case 3:
		if g.Len() < 120 {
			_, _ = g.AppendGeneration()
		}
	default:
		for _, pos := range g.Selected() {
			t, _ := g.TileAt(pos)
			_ = g.ToggleSelect(t.ID)
		}
		if i, j, ok := g.FindMatchablePair(); ok {
			a, _ := g.TileAt(i)
			b, _ := g.TileAt(j)
			_ = g.ToggleSelect(a.ID)
			_ = g.ToggleSelect(b.ID)
			_ = g.UseSelectedPair()
		}
	}
}

func tileOf(id int64) ir.SnapshotTile {
	return ir.SnapshotTile{ID: id, Value: int(id%9) + 1, RenderClass: "sq-active"}
}

// snapshotOfIDs returns tiles with ids from..to-1.
func snapshotOfIDs(from, to int64) ir.Snapshot {
	s := ir.Snapshot{}
	for id := from; id < to; id++ {
		s = append(s, tileOf(id))
	}
	return s
}
