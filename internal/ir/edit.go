package ir

import (
	"fmt"
	"slices"
)

// EditKind names an edit variant in journals and traces.
type EditKind string

const (
	EditRowRemoved   EditKind = "row_removed"
	EditTileChanged  EditKind = "tile_changed"
	EditTileAppended EditKind = "tile_appended"
)

// Edit is one atomic structural change a presentation layer applies.
// The set of variants is sealed: RowRemoved, TileChanged, TileAppended.
type Edit interface {
	Kind() EditKind
	ToIR() IRObject
	edit()
}

// RowRemoved removes the width-sized block starting at Row*width.
type RowRemoved struct {
	Row int
}

// TileChanged replaces the tile at Position (same id and value, new class).
type TileChanged struct {
	Position int
	Tile     SnapshotTile
}

// TileAppended adds Tile at the tail.
type TileAppended struct {
	Tile SnapshotTile
}

func (RowRemoved) edit()   {}
func (TileChanged) edit()  {}
func (TileAppended) edit() {}

// Kind returns the edit's wire kind.
func (RowRemoved) Kind() EditKind { return EditRowRemoved }

// Kind returns the edit's wire kind.
func (TileChanged) Kind() EditKind { return EditTileChanged }

// Kind returns the edit's wire kind.
func (TileAppended) Kind() EditKind { return EditTileAppended }

// ToIR encodes the edit as {kind, row}; EditFromIR decodes it.
func (e RowRemoved) ToIR() IRObject {
	return NewIRObjectFromPairs(
		O("kind", IRString(EditRowRemoved)),
		O("row", IRInt(e.Row)),
	)
}

// ToIR encodes the edit as {kind, position, tile}.
func (e TileChanged) ToIR() IRObject {
	return NewIRObjectFromPairs(
		O("kind", IRString(EditTileChanged)),
		O("position", IRInt(e.Position)),
		O("tile", e.Tile.ToIR()),
	)
}

// ToIR encodes the edit as {kind, tile}.
func (e TileAppended) ToIR() IRObject {
	return NewIRObjectFromPairs(
		O("kind", IRString(EditTileAppended)),
		O("tile", e.Tile.ToIR()),
	)
}

// String formats the edit for traces, e.g. row_removed(2).
func (e RowRemoved) String() string { return fmt.Sprintf("row_removed(%d)", e.Row) }

// String formats the edit for traces, e.g. tile_changed(4, #4 sq-used).
func (e TileChanged) String() string {
	return fmt.Sprintf("tile_changed(%d, #%d %s)", e.Position, e.Tile.ID, e.Tile.RenderClass)
}

// String formats the edit for traces, e.g. tile_appended(#27=1).
func (e TileAppended) String() string {
	return fmt.Sprintf("tile_appended(#%d=%d)", e.Tile.ID, e.Tile.Value)
}

// EditFromIR decodes an edit previously encoded with ToIR.
func EditFromIR(obj IRObject) (Edit, error) {
	kind, _ := obj.String("kind")
	switch EditKind(kind) {
	case EditRowRemoved:
		row, ok := obj.Int("row")
		if !ok {
			return nil, fmt.Errorf("row_removed: missing row")
		}
		return RowRemoved{Row: int(row)}, nil
	case EditTileChanged:
		pos, ok := obj.Int("position")
		if !ok {
			return nil, fmt.Errorf("tile_changed: missing position")
		}
		tile, err := tileField(obj)
		if err != nil {
			return nil, fmt.Errorf("tile_changed: %w", err)
		}
		return TileChanged{Position: int(pos), Tile: tile}, nil
	case EditTileAppended:
		tile, err := tileField(obj)
		if err != nil {
			return nil, fmt.Errorf("tile_appended: %w", err)
		}
		return TileAppended{Tile: tile}, nil
	default:
		return nil, fmt.Errorf("unknown edit kind %q", kind)
	}
}

func tileField(obj IRObject) (SnapshotTile, error) {
	raw, ok := obj["tile"].(IRObject)
	if !ok {
		return SnapshotTile{}, fmt.Errorf("missing tile")
	}
	return SnapshotTileFromIR(raw)
}

// ApplyEdit returns a copy of s with e applied.
// It fails when the edit does not fit s (row out of range, position out of
// range, or a changed tile whose id or value differs from the one it replaces).
func ApplyEdit(s Snapshot, e Edit, width int) (Snapshot, error) {
	switch e := e.(type) {
	case RowRemoved:
		start := e.Row * width
		if e.Row < 0 || start+width > len(s) {
			return nil, fmt.Errorf("apply %s: snapshot has %d tiles", e, len(s))
		}
		return slices.Delete(s.Clone(), start, start+width), nil
	case TileChanged:
		if e.Position < 0 || e.Position >= len(s) {
			return nil, fmt.Errorf("apply %s: snapshot has %d tiles", e, len(s))
		}
		prev := s[e.Position]
		if prev.ID != e.Tile.ID || prev.Value != e.Tile.Value {
			return nil, fmt.Errorf("apply %s: position holds #%d=%d", e, prev.ID, prev.Value)
		}
		cp := s.Clone()
		cp[e.Position] = e.Tile
		return cp, nil
	case TileAppended:
		return append(s.Clone(), e.Tile), nil
	default:
		return nil, fmt.Errorf("unknown edit %T", e)
	}
}

// ApplyEdits folds edits over s in order.
func ApplyEdits(s Snapshot, edits []Edit, width int) (Snapshot, error) {
	cur := s.Clone()
	for i, e := range edits {
		next, err := ApplyEdit(cur, e, width)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}

// EditsToIR encodes an edit stream as an IRArray.
func EditsToIR(edits []Edit) IRArray {
	arr := make(IRArray, len(edits))
	for i, e := range edits {
		arr[i] = e.ToIR()
	}
	return arr
}
