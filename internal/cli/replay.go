package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session    string `json:"session"`
	Width      int    `json:"width"`
	Cycles     int    `json:"cycles"`
	Rejected   int    `json:"rejected"`
	Edits      int    `json:"edits"`
	Tiles      int    `json:"tiles"`
	Reproduced bool   `json:"reproduced"`
	Error      string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllReproduced bool                  `json:"all_reproduced"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute journaled sessions and verify their edits",
		Long: `Re-execute every journaled operation on a fresh board and verify that
each cycle reproduces the recorded outcome, edit stream and snapshot hash.

Exit codes:
  0 - Every session reproduced
  1 - A session diverged from its journal
  2 - Command error (database or session not found, etc.)

Examples:
  tenpair replay --db ./tenpair.db
  tenpair replay --db ./tenpair.db --session 0190...
  tenpair replay --db ./tenpair.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

// openExisting opens a journal that must already exist; store.Open
// would otherwise create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []store.SessionInfo
	if opts.SessionID != "" {
		info, err := st.ReadSession(ctx, opts.SessionID)
		if errors.Is(err, store.ErrSessionNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("session %s not found", opts.SessionID), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []store.SessionInfo{info}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions: len(sessions),
		AllReproduced: true,
	}
	for _, info := range sessions {
		sr, err := replaySession(ctx, st, info)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", info.ID), err)
		}
		formatter.VerboseLog("replayed %s: %d cycles", sr.Session, sr.Cycles)
		result.Sessions = append(result.Sessions, sr)
		if !sr.Reproduced {
			result.AllReproduced = false
		}
	}

	if formatter.JSON() {
		var failure *CLIError
		if !result.AllReproduced {
			failure = &CLIError{Code: ErrCodeReplayFailed, Message: "replay diverged from the journal"}
		}
		if err := formatter.Result(result, failure); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllReproduced {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	return nil
}

// replaySession reads one journal and re-executes it. A divergence is
// reported in the result; only read failures are returned as errors.
func replaySession(ctx context.Context, st *store.Store, info store.SessionInfo) (ReplaySessionResult, error) {
	cycles, err := st.ReadCycles(ctx, info.ID)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	sr := ReplaySessionResult{
		Session:    info.ID,
		Width:      info.Width,
		Cycles:     len(cycles),
		Reproduced: true,
	}
	for _, c := range cycles {
		sr.Edits += len(c.Edits)
		for _, op := range c.Ops {
			if op.Outcome == engine.OutcomeRejected {
				sr.Rejected++
			}
		}
	}

	if info.IRVersion != ir.IRVersion {
		sr.Reproduced = false
		sr.Error = fmt.Sprintf("journal payload version %s, this build reads %s", info.IRVersion, ir.IRVersion)
		return sr, nil
	}

	if err := engine.VerifyReplay(ctx, info.Width, cycles); err != nil {
		if !engine.IsReplayMismatch(err) {
			return sr, err
		}
		sr.Reproduced = false
		sr.Error = err.Error()
		return sr, nil
	}

	_, final, err := engine.Replay(ctx, info.Width, cycles)
	if err != nil {
		return sr, err
	}
	sr.Tiles = len(final)
	return sr, nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	if result.TotalSessions == 0 {
		f.Printf("No sessions found in database.\n")
		return
	}

	f.Printf("Replay Summary: %d session(s)\n\n", result.TotalSessions)
	for _, s := range result.Sessions {
		status := "✓"
		if !s.Reproduced {
			status = "✗"
		}
		f.Printf("%s Session: %s\n", status, s.Session)
		f.Printf("  Cycles: %d (%d rejected), %d edits, width %d\n", s.Cycles, s.Rejected, s.Edits, s.Width)
		if s.Reproduced {
			f.Printf("  Final board: %d tiles\n", s.Tiles)
		} else {
			f.Printf("  Diverged: %s\n", s.Error)
		}
		f.Printf("\n")
	}

	if result.AllReproduced {
		f.Printf("✓ All sessions reproduced\n")
		return
	}
	f.Printf("✗ Replay diverged from the journal\n")
}
