package store

import (
	"fmt"

	"github.com/roach88/tenpair/internal/ir"
)

// marshalArgs converts operation args to canonical JSON TEXT.
func marshalArgs(op ir.Operation) (string, error) {
	data, err := ir.MarshalCanonical(op.Args())
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalOperation rebuilds an operation from its kind and args TEXT.
func unmarshalOperation(kind, data string) (ir.Operation, error) {
	args := ir.IRObject{}
	if data != "" && data != "{}" {
		obj, err := ir.UnmarshalIRObject([]byte(data))
		if err != nil {
			return ir.Operation{}, fmt.Errorf("unmarshal args: %w", err)
		}
		args = obj
	}
	return ir.OperationFromArgs(ir.OpKind(kind), args)
}

// marshalEdit converts an edit to canonical JSON TEXT.
func marshalEdit(e ir.Edit) (string, error) {
	data, err := ir.MarshalCanonical(e.ToIR())
	if err != nil {
		return "", fmt.Errorf("marshal edit: %w", err)
	}
	return string(data), nil
}

// unmarshalEdit parses canonical JSON TEXT into an edit.
func unmarshalEdit(data string) (ir.Edit, error) {
	obj, err := ir.UnmarshalIRObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal edit: %w", err)
	}
	e, err := ir.EditFromIR(obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal edit: %w", err)
	}
	return e, nil
}
