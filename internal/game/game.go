package game

import (
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/tenpair/internal/ir"
)

// DefaultWidth is the number of tiles per row.
const DefaultWidth = 9

// MinValue and MaxValue bound tile values.
const (
	MinValue = 1
	MaxValue = 9
)

// pairSum is the sum that makes two different values matchable.
const pairSum = 10

// Game is the rule engine. It exclusively owns the board.
//
// A Game is not safe for concurrent use; callers serialize access
// (engine.Session does so for the CLI).
type Game struct {
	width int
	tiles []ir.Tile
	ids   *IDSequence
}

// Option configures a Game.
type Option func(*Game)

// WithWidth sets the row width. Non-positive widths are ignored.
func WithWidth(width int) Option {
	return func(g *Game) {
		if width > 0 {
			g.width = width
		}
	}
}

// New creates an empty board.
func New(opts ...Option) *Game {
	g := &Game{
		width: DefaultWidth,
		ids:   NewIDSequence(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewWithValues creates a board holding one Active tile per value, in order.
func NewWithValues(values []int, opts ...Option) (*Game, error) {
	g := New(opts...)
	for _, v := range values {
		if _, err := g.AddTile(v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Width returns the row width.
func (g *Game) Width() int {
	return g.width
}

// Len returns the number of tiles on the board.
func (g *Game) Len() int {
	return len(g.tiles)
}

// Rows returns the number of rows, counting a trailing partial row.
func (g *Game) Rows() int {
	return (len(g.tiles) + g.width - 1) / g.width
}

// NextID returns the id the next appended tile will receive.
func (g *Game) NextID() int64 {
	return g.ids.Peek()
}

// Tiles returns a copy of the board.
func (g *Game) Tiles() []ir.Tile {
	return slices.Clone(g.tiles)
}

// TileAt returns the tile at a linear position.
func (g *Game) TileAt(pos int) (ir.Tile, bool) {
	if pos < 0 || pos >= len(g.tiles) {
		return ir.Tile{}, false
	}
	return g.tiles[pos], true
}

// Position returns the linear position of the tile with the given id, or -1.
// Ids increase with position, so the lookup is a binary search.
func (g *Game) Position(id int64) int {
	pos, found := slices.BinarySearchFunc(g.tiles, id, func(t ir.Tile, id int64) int {
		switch {
		case t.ID < id:
			return -1
		case t.ID > id:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return pos
}

// Tile returns the tile with the given id.
func (g *Game) Tile(id int64) (ir.Tile, bool) {
	pos := g.Position(id)
	if pos < 0 {
		return ir.Tile{}, false
	}
	return g.tiles[pos], true
}

// Selected returns the positions of the Selected tiles in board order.
func (g *Game) Selected() []int {
	var out []int
	for i, t := range g.tiles {
		if t.Status == ir.StatusSelected {
			out = append(out, i)
		}
	}
	return out
}

// Snapshot returns the visible projection of the board.
func (g *Game) Snapshot() ir.Snapshot {
	return ir.SnapshotOf(g.tiles)
}

// AddTile appends a new Active tile and returns its id.
func (g *Game) AddTile(value int) (int64, error) {
	if value < MinValue || value > MaxValue {
		return 0, reject(ir.OpAddTile, ReasonInvalidValue, "value %d outside %d..%d", value, MinValue, MaxValue)
	}
	id := g.ids.Next()
	g.tiles = append(g.tiles, ir.Tile{ID: id, Value: value, Status: ir.StatusActive})
	return id, nil
}

// ToggleSelect selects an Active tile or deselects a Selected one.
// At most two tiles may be Selected at once; Used tiles cannot be toggled.
func (g *Game) ToggleSelect(id int64) error {
	pos := g.Position(id)
	if pos < 0 {
		return reject(ir.OpToggleSelect, ReasonUnknownTile, "tile #%d", id)
	}

	t := &g.tiles[pos]
	switch t.Status {
	case ir.StatusActive:
		if n := g.selectedCount(); n >= 2 {
			return reject(ir.OpToggleSelect, ReasonSelectionFull, "%d tiles already selected", n)
		}
		t.Status = ir.StatusSelected
	case ir.StatusSelected:
		t.Status = ir.StatusActive
	default:
		return reject(ir.OpToggleSelect, ReasonTileUsed, "tile #%d", id)
	}
	return nil
}

// UseSelectedPair consumes the two Selected tiles if they are matchable.
func (g *Game) UseSelectedPair() error {
	sel := g.Selected()
	if len(sel) != 2 {
		return reject(ir.OpUseSelectedPair, ReasonSelectionCount, "%d tiles selected", len(sel))
	}
	i, j := sel[0], sel[1]
	if !g.MatchablePair(i, j) {
		return reject(ir.OpUseSelectedPair, ReasonNotMatchable, "positions %d and %d", i, j)
	}
	g.tiles[i].Status = ir.StatusUsed
	g.tiles[j].Status = ir.StatusUsed
	return nil
}

// CanRemoveRow reports whether row is fully used and followed by at least
// one complete row plus one more row.
func (g *Game) CanRemoveRow(row int) bool {
	if row < 0 || (row+2)*g.width >= len(g.tiles) {
		return false
	}
	start := row * g.width
	return lo.EveryBy(g.tiles[start:start+g.width], ir.Tile.Used)
}

// RemoveRow deletes the tiles of row. Later tiles shift down by one row;
// their ids are unchanged.
func (g *Game) RemoveRow(row int) error {
	if !g.CanRemoveRow(row) {
		return reject(ir.OpRemoveRow, ReasonRowNotRemovable, "row %d of %d", row, g.Rows())
	}
	start := row * g.width
	g.tiles = slices.Delete(g.tiles, start, start+g.width)
	return nil
}

// CanAppendGeneration reports whether any tile is not used.
func (g *Game) CanAppendGeneration() bool {
	return lo.SomeBy(g.tiles, func(t ir.Tile) bool { return !t.Used() })
}

// AppendGeneration appends an Active copy of every unused tile's value,
// in board order as of the call. It returns the number of tiles appended.
func (g *Game) AppendGeneration() (int, error) {
	if !g.CanAppendGeneration() {
		return 0, reject(ir.OpAppendGeneration, ReasonNothingToCopy, "all %d tiles used", len(g.tiles))
	}
	values := lo.FilterMap(g.tiles, func(t ir.Tile, _ int) (int, bool) {
		return t.Value, !t.Used()
	})
	for _, v := range values {
		id := g.ids.Next()
		g.tiles = append(g.tiles, ir.Tile{ID: id, Value: v, Status: ir.StatusActive})
	}
	return len(values), nil
}

func (g *Game) selectedCount() int {
	return lo.CountBy(g.tiles, func(t ir.Tile) bool { return t.Status == ir.StatusSelected })
}
