package view

import (
	"errors"
	"fmt"

	"github.com/roach88/tenpair/internal/ir"
)

// MismatchError reports that a presenter does not show the expected board.
type MismatchError struct {
	// Position is the first differing position.
	Position int

	// Want and Got are the tiles at Position; zero when a length differs.
	Want ir.SnapshotTile
	Got  ir.SnapshotTile

	// WantLen and GotLen are the board lengths.
	WantLen int
	GotLen  int
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	if e.WantLen != e.GotLen {
		return fmt.Sprintf("presentation mismatch: shows %d tiles, want %d", e.GotLen, e.WantLen)
	}
	return fmt.Sprintf("presentation mismatch at %d: shows #%d=%d %s, want #%d=%d %s",
		e.Position, e.Got.ID, e.Got.Value, e.Got.RenderClass, e.Want.ID, e.Want.Value, e.Want.RenderClass)
}

// IsMismatch returns true if err is, or wraps, a *MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}
