// Package harness runs scripted games against a real session and checks
// what the presentation received.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	width: 3
//	layout: [1, 9, 5]
//	steps:
//	  - op: pick
//	    pos: 0
//	  - op: toggle
//	    id: 1
//	  - op: use
//	    expect:
//	      outcome: applied
//	      edits: ["tile_changed(0, #0 sq-used)", "tile_changed(1, #1 sq-used)"]
//	  - op: drain
//	assertions:
//	  - type: board
//	    rows: [" .  .  5"]
//	  - type: replay
//
// Step ops are add, toggle, pick, use, remove, append, tick and drain.
// Operations run synchronously; their edits are only rendered by tick
// (one scheduler step per count) and drain.
//
// # Assertion Types
//
//   - edit_count: journaled edits, optionally of one kind
//   - pending, tiles, rendered: final counters
//   - board: the rendered grid, one string per row
//   - hint: the lowest matchable pair, or none
//   - no_presenter_errors: every render and verification succeeded
//   - replay: the journal replays to the same outcomes and edits
//
// # Deterministic Testing
//
// Every scenario runs with a deterministic clock, a fixed session id and
// an in-memory SQLite journal. The trace is read back from that journal,
// so golden files also cover the store round trip.
package harness
