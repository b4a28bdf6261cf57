// Package game implements the tenpair rule engine.
//
// A Game owns the authoritative board: an ordered tile sequence split into
// rows of a fixed width. Callers mutate it only through the operations
// below; every operation validates its preconditions first and either
// applies completely or returns a *RejectedError leaving the board as it was.
//
//   - AddTile appends an Active tile
//   - ToggleSelect flips a tile between Active and Selected (at most two Selected)
//   - UseSelectedPair consumes the two Selected tiles if they match
//   - RemoveRow deletes a fully used row that has at least two rows after it
//   - AppendGeneration copies the values of every unused tile to the tail
//
// Two tiles match when their values are equal or sum to ten and they are
// near: every tile strictly between them, scanning along the row order or
// down the column, is already used.
//
// INVARIANTS:
//   - Tile ids strictly increase with position and are never reused
//   - The board shrinks only by whole rows aligned to a multiple of the width
//   - Otherwise tiles are only appended at the tail
package game
