package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tenpair/internal/game"
)

//go:embed game.cue
var gameSchema string

// Game is a decoded game file.
type Game struct {
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width"`
	TickMS int    `json:"tick_ms"`
	Layout []int  `json:"layout,omitempty"`
}

// Tick returns the render interval.
func (g *Game) Tick() time.Duration {
	return time.Duration(g.TickMS) * time.Millisecond
}

// Tiles returns the opening layout, or the classic one if the file has none.
func (g *Game) Tiles() []int {
	if len(g.Layout) == 0 {
		return DefaultLayout()
	}
	return g.Layout
}

// DefaultLayout is the classic opening: 1..9 followed by the pairs
// (1, k) for k = 1..9.
func DefaultLayout() []int {
	return game.ClassicLayout()
}

// DefaultGame is the game played without a game file.
func DefaultGame(cfg *Config) *Game {
	return &Game{
		Width:  cfg.Width,
		TickMS: int(cfg.Tick / time.Millisecond),
	}
}

// LoadGameFile reads and validates a CUE game file.
func LoadGameFile(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}
	return CompileGame(path, data)
}

// CompileGame unifies src with the #Game schema and decodes it.
// filename is only used in error positions.
func CompileGame(filename string, src []byte) (*Game, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(gameSchema, cue.Filename("game.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("game schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Game"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var g Game
	if err := unified.Decode(&g); err != nil {
		return nil, formatCUEError(err)
	}
	return &g, nil
}

// ConfigError is a settings or game file error, with a CUE position when
// one is known.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "game"
	if path := first.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	cfgErr := &ConfigError{Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}
