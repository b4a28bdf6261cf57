package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/ir"
)

func TestRunWithGolden_PairThenAppend(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/pair_then_append.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/pair_then_append.yaml")
	require.NoError(t, err)

	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, s.Name, s.Width, result))
}

func TestTraceSnapshot_CanonicalAndStable(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "tiny",
		Width:        2,
		Board:        " 1\n",
		Trace: []TraceEvent{{
			Seq:   1,
			Ops:   []TraceOp{{Seq: 2, Op: "add_tile(1)", Outcome: "applied"}},
			Edits: []ir.Edit{ir.TileAppended{Tile: ir.SnapshotTile{ID: 0, Value: 1, RenderClass: "sq-active"}}},
		}},
	}

	first, err := ir.MarshalCanonical(snap.toIR())
	require.NoError(t, err)
	second, err := ir.MarshalCanonical(snap.toIR())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t,
		`{"board":" 1\n","cycles":[{"edits":["tile_appended(#0=1)"],"ops":[{"op":"add_tile(1)","outcome":"applied","seq":2}],"seq":1}],"scenario":"tiny","width":2}`,
		string(first))
}
