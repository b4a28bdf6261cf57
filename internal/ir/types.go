package ir

import "fmt"

// Status is the lifecycle state of a tile.
type Status int

const (
	// StatusActive is a tile that can be selected.
	StatusActive Status = iota + 1
	// StatusSelected is a tile picked for the next match.
	StatusSelected
	// StatusUsed is a tile consumed by a match.
	StatusUsed
)

// String returns the lower-case status name used in render classes and journals.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSelected:
		return "selected"
	case StatusUsed:
		return "used"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// RenderClass is the presentation label derived from the status.
func (s Status) RenderClass() string {
	return "sq-" + s.String()
}

// Tile is a single numbered unit on the board.
// Only the rule engine creates tiles and mutates their status.
type Tile struct {
	ID     int64  `json:"id"`
	Value  int    `json:"value"`
	Status Status `json:"status"`
}

// Used reports whether the tile has been consumed.
func (t Tile) Used() bool {
	return t.Status == StatusUsed
}

// SnapshotTile is the visible projection of a tile.
type SnapshotTile struct {
	ID          int64  `json:"id"`
	Value       int    `json:"value"`
	RenderClass string `json:"render_class"`
}

// Project derives the snapshot view of a tile.
func Project(t Tile) SnapshotTile {
	return SnapshotTile{ID: t.ID, Value: t.Value, RenderClass: t.Status.RenderClass()}
}

// ToIR converts the tile to an IRObject for canonical encoding.
func (t SnapshotTile) ToIR() IRObject {
	return NewIRObjectFromPairs(
		O("id", IRInt(t.ID)),
		O("value", IRInt(t.Value)),
		O("render_class", IRString(t.RenderClass)),
	)
}

// SnapshotTileFromIR is the inverse of SnapshotTile.ToIR.
func SnapshotTileFromIR(obj IRObject) (SnapshotTile, error) {
	id, ok := obj.Int("id")
	if !ok {
		return SnapshotTile{}, fmt.Errorf("tile: missing id")
	}
	value, ok := obj.Int("value")
	if !ok {
		return SnapshotTile{}, fmt.Errorf("tile %d: missing value", id)
	}
	class, ok := obj.String("render_class")
	if !ok {
		return SnapshotTile{}, fmt.Errorf("tile %d: missing render_class", id)
	}
	return SnapshotTile{ID: id, Value: int(value), RenderClass: class}, nil
}

// Snapshot is an ordered projection of a board at one point in time.
// Treat it as immutable: every mutating helper returns a copy.
type Snapshot []SnapshotTile

// SnapshotOf projects a tile sequence. The result never aliases tiles.
func SnapshotOf(tiles []Tile) Snapshot {
	s := make(Snapshot, len(tiles))
	for i, t := range tiles {
		s[i] = Project(t)
	}
	return s
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	cp := make(Snapshot, len(s))
	copy(cp, s)
	return cp
}

// Equal reports whether both snapshots hold the same (id, value, class) sequence.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Rows returns the number of (possibly partial) rows at the given width.
func (s Snapshot) Rows(width int) int {
	return (len(s) + width - 1) / width
}

// ToIR converts the snapshot to an IRArray for canonical encoding.
func (s Snapshot) ToIR() IRArray {
	arr := make(IRArray, len(s))
	for i, t := range s {
		arr[i] = t.ToIR()
	}
	return arr
}
