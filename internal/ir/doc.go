// Package ir provides the value types shared by every tenpair package:
// tiles, snapshots, edits and operations, plus their canonical encoding.
//
// This package contains data definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Snapshots are deep copies and never alias a board
//   - Edits are a sealed set of three variants (RowRemoved, TileChanged, TileAppended)
//   - NO float types anywhere - canonical JSON rejects them
//   - All JSON tags use snake_case
package ir
