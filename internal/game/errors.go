package game

import (
	"errors"
	"fmt"

	"github.com/roach88/tenpair/internal/ir"
)

// RejectReason categorizes a rejected operation.
type RejectReason string

const (
	// ReasonInvalidValue indicates a tile value outside 1..9.
	ReasonInvalidValue RejectReason = "INVALID_VALUE"

	// ReasonUnknownTile indicates an id that is not on the board.
	ReasonUnknownTile RejectReason = "UNKNOWN_TILE"

	// ReasonTileUsed indicates an attempt to select a consumed tile.
	ReasonTileUsed RejectReason = "TILE_USED"

	// ReasonSelectionFull indicates two tiles are already selected.
	ReasonSelectionFull RejectReason = "SELECTION_FULL"

	// ReasonSelectionCount indicates a pair was requested without exactly two selected tiles.
	ReasonSelectionCount RejectReason = "SELECTION_COUNT"

	// ReasonNotMatchable indicates the selected tiles do not form a matchable pair.
	ReasonNotMatchable RejectReason = "NOT_MATCHABLE"

	// ReasonRowNotRemovable indicates the row is not fully used or is one of the last two rows.
	ReasonRowNotRemovable RejectReason = "ROW_NOT_REMOVABLE"

	// ReasonNothingToCopy indicates every tile is used, so no generation can be appended.
	ReasonNothingToCopy RejectReason = "NOTHING_TO_COPY"
)

// RejectedError reports a caller-triggered operation that failed its
// precondition check. The board is unchanged when one is returned.
type RejectedError struct {
	// Op is the operation that was rejected.
	Op ir.OpKind

	// Reason identifies the failed precondition.
	Reason RejectReason

	// Detail is a human-readable description.
	Detail string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s rejected: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %s (%s)", e.Op, e.Reason, e.Detail)
}

func reject(op ir.OpKind, reason RejectReason, format string, args ...any) *RejectedError {
	return &RejectedError{Op: op, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsRejected returns true if err is, or wraps, a *RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// ReasonOf returns the reject reason carried by err, or "" if err is not a rejection.
func ReasonOf(err error) RejectReason {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
