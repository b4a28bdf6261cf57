package reconcile

import (
	"errors"
	"fmt"
)

// InvariantCode categorizes a broken structural invariant.
type InvariantCode string

const (
	// CodeIDRegression indicates a row start id in the new snapshot is
	// smaller than the delivered one at the same position.
	CodeIDRegression InvariantCode = "ID_REGRESSION"

	// CodeMissingRow indicates the delivered snapshot has a row the new
	// snapshot does not reach.
	CodeMissingRow InvariantCode = "MISSING_ROW"

	// CodePartialRow indicates a removed row that is shorter than the width.
	CodePartialRow InvariantCode = "PARTIAL_ROW"

	// CodeTileMismatch indicates a common position holds a different id or value.
	CodeTileMismatch InvariantCode = "TILE_MISMATCH"

	// CodeLengthRegression indicates the new snapshot is shorter than the
	// delivered one after all row removals.
	CodeLengthRegression InvariantCode = "LENGTH_REGRESSION"

	// CodeNoEdits indicates the snapshots differ but no edit was produced.
	CodeNoEdits InvariantCode = "NO_EDITS"

	// CodeDiverged indicates the working snapshot does not equal the target
	// after all phases.
	CodeDiverged InvariantCode = "DIVERGED"
)

// InvariantError reports that the board was mutated outside the
// append/remove-row discipline, or that reconciliation failed to converge.
// It is an internal error, never a normal rejection.
type InvariantError struct {
	// Code identifies the broken invariant.
	Code InvariantCode

	// Phase is the reconciliation phase that detected it.
	Phase string

	// Position is the linear position involved, or -1.
	Position int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s (phase=%s, position=%d)", e.Code, e.Message, e.Phase, e.Position)
	}
	return fmt.Sprintf("%s: %s (phase=%s)", e.Code, e.Message, e.Phase)
}

// IsInvariant returns true if err is, or wraps, an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// CodeOf returns the invariant code carried by err, or "".
func CodeOf(err error) InvariantCode {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func violation(code InvariantCode, phase string, pos int, format string, args ...any) *InvariantError {
	return &InvariantError{
		Code:     code,
		Phase:    phase,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	}
}
