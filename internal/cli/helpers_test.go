package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/store"
	"github.com/roach88/tenpair/internal/testutil"
)

const recordedSessionID = "cli-1"

// recordSession plays a short width-3 game into a new journal and returns
// its path. The journal holds 6 cycles, 8 operations (1 rejected) and 8
// edits, and ends with 4 tiles.
func recordSession(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tenpair.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	sess := engine.NewSession(game.New(game.WithWidth(3)), nil,
		engine.WithSessionID(recordedSessionID),
		engine.WithRecorder(store.NewRecorder(st, 3)),
		engine.WithScheduler(engine.NewScheduler(time.Millisecond)),
		engine.WithClock(testutil.NewDeterministicClock()),
	)
	_, err = sess.Apply(ctx, ir.AddTile(1), ir.AddTile(9), ir.AddTile(5))
	require.NoError(t, err)
	require.NoError(t, sess.ToggleSelect(ctx, 0))
	require.NoError(t, sess.ToggleSelect(ctx, 1))
	require.NoError(t, sess.UseSelectedPair(ctx))
	_, err = sess.AppendGeneration(ctx)
	require.NoError(t, err)
	require.Error(t, sess.ToggleSelect(ctx, 0))
	return dbPath
}

// execute runs cmd with args and returns its stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
