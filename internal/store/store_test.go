package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
)

func TestOpen_CreatesDatabaseAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	for _, table := range []string{"sessions", "checkpoints", "operations", "edits"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestRecorder_CreatesSessionOnFirstCycle(t *testing.T) {
	s := createTestStore(t)
	id := playRecordedSession(t, s)

	info, err := s.ReadSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.DefaultWidth, info.Width)
	assert.Equal(t, ir.EngineVersion, info.EngineVersion)
	assert.Equal(t, ir.IRVersion, info.IRVersion)

	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
}

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSession(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReadCycles_RoundTripsTheJournal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := playRecordedSession(t, s)

	cycles, err := s.ReadCycles(ctx, id)
	require.NoError(t, err)
	require.Len(t, cycles, 27+5)

	first := cycles[0]
	assert.Equal(t, int64(1), first.Seq)
	require.Len(t, first.Ops, 1)
	assert.Equal(t, ir.AddTile(1), first.Ops[0].Op)
	assert.Equal(t, int64(2), first.Ops[0].Seq)
	assert.Equal(t, []ir.Edit{ir.TileAppended{Tile: ir.SnapshotTile{ID: 0, Value: 1, RenderClass: "sq-active"}}}, first.Edits)

	appendCycle := cycles[30]
	assert.Equal(t, ir.AppendGeneration(), appendCycle.Ops[0].Op)
	assert.Equal(t, int64(25), appendCycle.Ops[0].Result)
	assert.Len(t, appendCycle.Edits, 25)

	rejected := cycles[31]
	assert.Equal(t, engine.OutcomeRejected, rejected.Ops[0].Outcome)
	assert.Equal(t, string(game.ReasonTileUsed), rejected.Ops[0].Reason)
	assert.Empty(t, rejected.Edits)

	total, err := s.CountEdits(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 27+4+25, total)

	last, err := s.LastSeq(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(64), last)
}

func TestReadCycles_ReplaysFaithfully(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := playRecordedSession(t, s)

	cycles, err := s.ReadCycles(ctx, id)
	require.NoError(t, err)
	assert.NoError(t, engine.VerifyReplay(ctx, game.DefaultWidth, cycles))
}

func TestWriteCycle_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, SessionInfo{ID: "dup", Width: 3}))

	c := engine.CycleRecord{
		SessionID:    "dup",
		Seq:          1,
		Ops:          []engine.OperationRecord{{Seq: 2, Op: ir.AddTile(4), Outcome: engine.OutcomeApplied}},
		Edits:        []ir.Edit{ir.TileAppended{Tile: ir.SnapshotTile{ID: 0, Value: 4, RenderClass: "sq-active"}}},
		SnapshotHash: "h",
	}
	require.NoError(t, s.WriteCycle(ctx, c))
	require.NoError(t, s.WriteCycle(ctx, c))

	cycles, err := s.ReadCycles(ctx, "dup")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].Ops, 1)
	assert.Len(t, cycles[0].Edits, 1)
}

func TestWriteCycle_RequiresSession(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteCycle(context.Background(), engine.CycleRecord{SessionID: "ghost", Seq: 1, SnapshotHash: "h"})
	assert.Error(t, err)
}

func TestReadCycles_UnknownSessionIsEmpty(t *testing.T) {
	s := createTestStore(t)

	cycles, err := s.ReadCycles(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, cycles)
	assert.Empty(t, cycles)
}

func TestMarshalEdit_Canonical(t *testing.T) {
	payload, err := marshalEdit(ir.TileChanged{Position: 3, Tile: ir.SnapshotTile{ID: 12, Value: 9, RenderClass: "sq-used"}})
	require.NoError(t, err)

	e, err := unmarshalEdit(payload)
	require.NoError(t, err)
	assert.Equal(t, ir.TileChanged{Position: 3, Tile: ir.SnapshotTile{ID: 12, Value: 9, RenderClass: "sq-used"}}, e)

	again, err := marshalEdit(e)
	require.NoError(t, err)
	assert.Equal(t, payload, again)
}
