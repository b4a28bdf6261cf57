package ir

import "fmt"

// OpKind names a rule engine mutation.
type OpKind string

const (
	OpAddTile          OpKind = "add_tile"
	OpToggleSelect     OpKind = "toggle_select"
	OpUseSelectedPair  OpKind = "use_selected_pair"
	OpRemoveRow        OpKind = "remove_row"
	OpAppendGeneration OpKind = "append_generation"
)

// Operation is a recorded call to one of the rule engine's mutations.
// Only the field relevant to Kind is meaningful.
type Operation struct {
	Kind   OpKind
	Value  int   // add_tile
	TileID int64 // toggle_select
	Row    int   // remove_row
}

func AddTile(value int) Operation       { return Operation{Kind: OpAddTile, Value: value} }
func ToggleSelect(id int64) Operation   { return Operation{Kind: OpToggleSelect, TileID: id} }
func UseSelectedPair() Operation        { return Operation{Kind: OpUseSelectedPair} }
func RemoveRow(row int) Operation       { return Operation{Kind: OpRemoveRow, Row: row} }
func AppendGeneration() Operation       { return Operation{Kind: OpAppendGeneration} }

// Args returns the canonical argument object for journaling.
func (op Operation) Args() IRObject {
	switch op.Kind {
	case OpAddTile:
		return NewIRObjectFromPairs(O("value", IRInt(op.Value)))
	case OpToggleSelect:
		return NewIRObjectFromPairs(O("id", IRInt(op.TileID)))
	case OpRemoveRow:
		return NewIRObjectFromPairs(O("row", IRInt(op.Row)))
	default:
		return IRObject{}
	}
}

// OperationFromArgs rebuilds an operation from its kind and journaled args.
func OperationFromArgs(kind OpKind, args IRObject) (Operation, error) {
	switch kind {
	case OpAddTile:
		v, ok := args.Int("value")
		if !ok {
			return Operation{}, fmt.Errorf("%s: missing value", kind)
		}
		return AddTile(int(v)), nil
	case OpToggleSelect:
		id, ok := args.Int("id")
		if !ok {
			return Operation{}, fmt.Errorf("%s: missing id", kind)
		}
		return ToggleSelect(id), nil
	case OpUseSelectedPair:
		return UseSelectedPair(), nil
	case OpRemoveRow:
		row, ok := args.Int("row")
		if !ok {
			return Operation{}, fmt.Errorf("%s: missing row", kind)
		}
		return RemoveRow(int(row)), nil
	case OpAppendGeneration:
		return AppendGeneration(), nil
	default:
		return Operation{}, fmt.Errorf("unknown operation %q", kind)
	}
}

func (op Operation) String() string {
	switch op.Kind {
	case OpAddTile:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Value)
	case OpToggleSelect:
		return fmt.Sprintf("%s(#%d)", op.Kind, op.TileID)
	case OpRemoveRow:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Row)
	default:
		return string(op.Kind)
	}
}
