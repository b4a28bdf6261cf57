package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/testutil"
)

// createTestStore opens a fresh journal in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// playRecordedSession plays a short classic game into s and returns the
// session id.
func playRecordedSession(t *testing.T, s *Store) string {
	t.Helper()
	ctx := context.Background()
	sess := engine.NewSession(game.New(), nil,
		engine.WithSessionID("journal-1"),
		engine.WithRecorder(NewRecorder(s, game.DefaultWidth)),
		engine.WithScheduler(engine.NewScheduler(time.Millisecond)),
		engine.WithClock(testutil.NewDeterministicClock()),
	)

	for _, v := range game.ClassicLayout() {
		_, err := sess.AddTile(ctx, v)
		require.NoError(t, err)
	}
	require.NoError(t, sess.ToggleSelect(ctx, 0))
	require.NoError(t, sess.ToggleSelect(ctx, 9))
	require.NoError(t, sess.UseSelectedPair(ctx))
	_, err := sess.AppendGeneration(ctx)
	require.NoError(t, err)
	require.Error(t, sess.ToggleSelect(ctx, 9))
	return sess.ID()
}
