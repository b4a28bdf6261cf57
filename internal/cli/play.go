package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tenpair/internal/config"
	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/game"
	"github.com/roach88/tenpair/internal/ir"
	"github.com/roach88/tenpair/internal/store"
	"github.com/roach88/tenpair/internal/view"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	GameFile  string
	Database  string
	Tick      time.Duration
	SessionID string

	// IDGenerator overrides session id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.SessionIDGenerator
}

// PlayResult is the summary printed when a game ends.
type PlayResult struct {
	Session  string `json:"session"`
	Width    int    `json:"width"`
	Tiles    int    `json:"tiles"`
	Rendered int    `json:"rendered"`
	Cleared  bool   `json:"cleared"`
	Board    string `json:"board"`
	Errors   int    `json:"errors"`
}

func (r PlayResult) String() string {
	state := "in play"
	if r.Cleared {
		state = "cleared"
	}
	return fmt.Sprintf("%ssession %s: %d tiles, %d edits rendered, %s",
		r.Board, r.Session, r.Tiles, r.Rendered, state)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game from commands on stdin",
		Long: `Play a game, reading one command per line from stdin.

Commands:
  add <v>       append a tile with value 1..9
  toggle <id>   select or deselect the tile with this id
  pick <pos>    select or deselect the tile at this board position
  use           cross out the selected pair
  remove <row>  remove a cleared row
  append        copy every remaining digit to the end of the board
  hint          show the lowest matchable pair
  pause         pause or resume the animation
  show          print the grid as rendered so far
  quit          stop reading commands

Edits are rendered one per tick while commands are read. On quit or end
of input the remaining edits are rendered and the final grid is printed.

With --db, a --session that is already journaled is resumed: its board is
rebuilt from the journal and new cycles are appended to it.

Examples:
  tenpair play
  tenpair play --game warmup.cue --tick 20ms
  tenpair play --db ./tenpair.db
  tenpair play --db ./tenpair.db --session morning`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.GameFile, "game", "", "CUE game file (default: classic opening)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default: $TENPAIR_DB, none if empty)")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 0, "render interval (default: game file or $TENPAIR_TICK)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id; resumes a journaled session with --db (default: generated)")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	cfg, err := rootConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	g := config.DefaultGame(cfg)
	if opts.GameFile != "" {
		g, err = config.LoadGameFile(opts.GameFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load game file", err)
		}
	}
	tick := g.Tick()
	if opts.Tick > 0 {
		tick = opts.Tick
	}

	sessOpts := []engine.SessionOption{
		engine.WithScheduler(engine.NewScheduler(tick)),
	}
	if opts.SessionID != "" {
		sessOpts = append(sessOpts, engine.WithSessionID(opts.SessionID))
	}
	if opts.IDGenerator != nil {
		sessOpts = append(sessOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	width := g.Width
	var resumed *game.Game

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.DB
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		if opts.SessionID != "" {
			resumed, width, err = resumeSession(ctx, st, opts.SessionID, width)
			if err != nil {
				return err
			}
			if resumed != nil {
				last, err := st.LastSeq(ctx, opts.SessionID)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read journal", err)
				}
				sessOpts = append(sessOpts, engine.WithClock(engine.NewClockAt(last)))
			}
		}
		sessOpts = append(sessOpts, engine.WithRecorder(store.NewRecorder(st, width)))

		if resumed != nil {
			edits, err := st.CountEdits(ctx, opts.SessionID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read journal", err)
			}
			formatter.Printf("resumed session %s: %d tiles, %d edits journaled\n", opts.SessionID, resumed.Len(), edits)
		}
	}

	grid := view.NewGrid(width)
	var sess *engine.Session
	if resumed != nil {
		sess = engine.NewSession(resumed, grid, sessOpts...)
		if _, err := sess.Sync(); err != nil {
			return WrapExitError(ExitCommandError, "failed to restore the board", err)
		}
		slog.Info("game resumed", "session", sess.ID(), "width", width, "tick", tick, "db", dbPath)
	} else {
		sess = engine.NewSession(game.New(game.WithWidth(width)), grid, sessOpts...)
		layout := g.Tiles()
		ops := make([]ir.Operation, len(layout))
		for i, v := range layout {
			ops[i] = ir.AddTile(v)
		}
		if _, err := sess.Apply(ctx, ops...); err != nil {
			return WrapExitError(ExitCommandError, "failed to lay out the board", err)
		}
		slog.Info("game started",
			"session", sess.ID(),
			"width", width,
			"tiles", len(layout),
			"tick", tick,
			"db", dbPath,
		)
		formatter.Printf("session %s\n", sess.ID())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		err := sess.Scheduler().Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		defer cancel()
		return readCommands(gctx, cmd.InOrStdin(), sess, grid, formatter)
	})
	if err := grp.Wait(); err != nil {
		return WrapExitError(ExitFailure, "game aborted", err)
	}

	sess.Scheduler().Drain()
	result := PlayResult{
		Session:  sess.ID(),
		Width:    width,
		Rendered: sess.Rendered(),
		Board:    grid.String(),
		Errors:   len(sess.Errors()),
	}
	sess.Inspect(func(gm *game.Game) {
		result.Tiles = gm.Len()
		result.Cleared = gm.Cleared()
	})
	slog.Info("game ended", "session", sess.ID(), "tiles", result.Tiles, "rendered", result.Rendered)

	if err := formatter.Success(result); err != nil {
		return err
	}
	if result.Errors > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d presentation error(s)", result.Errors))
	}
	return nil
}

// resumeSession rebuilds the board of a journaled session. It returns a
// nil game and the configured width when the session is not journaled.
func resumeSession(ctx context.Context, st *store.Store, id string, width int) (*game.Game, int, error) {
	info, err := st.ReadSession(ctx, id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, width, nil
	}
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to read session", err)
	}
	if info.IRVersion != ir.IRVersion {
		return nil, 0, NewExitError(ExitCommandError,
			fmt.Sprintf("session %s was journaled with IR version %s, this build writes %s", id, info.IRVersion, ir.IRVersion))
	}
	cycles, err := st.ReadCycles(ctx, id)
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	g, err := engine.Restore(ctx, info.Width, cycles)
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to restore the board", err)
	}
	return g, info.Width, nil
}

// readCommands runs one command per input line until quit, end of input
// or cancellation. Rejected operations are reported and play continues.
func readCommands(ctx context.Context, in io.Reader, sess *engine.Session, grid *view.Grid, f *OutputFormatter) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	// The scanner may block on stdin after cancellation; it exits with
	// the process.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = l
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" {
			return nil
		}
		if err := runCommand(ctx, fields, sess, grid, f); err != nil {
			if game.IsRejected(err) || isUsageError(err) {
				f.Printf("rejected: %v\n", err)
				continue
			}
			return err
		}
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func isUsageError(err error) bool {
	var u *usageError
	return errors.As(err, &u)
}

func intArg(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, &usageError{fmt.Sprintf("usage: %s <n>", fields[0])}
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, &usageError{fmt.Sprintf("%s: %q is not a number", fields[0], fields[1])}
	}
	return n, nil
}

func runCommand(ctx context.Context, fields []string, sess *engine.Session, grid *view.Grid, f *OutputFormatter) error {
	switch fields[0] {
	case "add":
		v, err := intArg(fields)
		if err != nil {
			return err
		}
		id, err := sess.AddTile(ctx, v)
		if err != nil {
			return err
		}
		f.Printf("added #%d\n", id)
	case "toggle":
		id, err := intArg(fields)
		if err != nil {
			return err
		}
		return sess.ToggleSelect(ctx, int64(id))
	case "pick":
		pos, err := intArg(fields)
		if err != nil {
			return err
		}
		var (
			tile ir.Tile
			ok   bool
		)
		sess.Inspect(func(g *game.Game) { tile, ok = g.TileAt(pos) })
		if !ok {
			return &usageError{fmt.Sprintf("pick: no tile at position %d", pos)}
		}
		return sess.ToggleSelect(ctx, tile.ID)
	case "use":
		return sess.UseSelectedPair(ctx)
	case "remove":
		row, err := intArg(fields)
		if err != nil {
			return err
		}
		return sess.RemoveRow(ctx, row)
	case "append":
		n, err := sess.AppendGeneration(ctx)
		if err != nil {
			return err
		}
		f.Printf("appended %d tiles\n", n)
	case "hint":
		var (
			i, j int
			ok   bool
		)
		sess.Inspect(func(g *game.Game) { i, j, ok = g.FindMatchablePair() })
		if !ok {
			f.Printf("hint: none\n")
			return nil
		}
		f.Printf("hint: %d %d\n", i, j)
	case "pause":
		if sess.Scheduler().Toggle() {
			f.Printf("running\n")
		} else {
			f.Printf("paused\n")
		}
	case "show":
		f.Printf("%s", grid.String())
	default:
		return &usageError{fmt.Sprintf("unknown command %q", fields[0])}
	}
	return nil
}
