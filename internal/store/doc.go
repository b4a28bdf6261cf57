// Package store provides the SQLite session journal.
//
// The journal is append-only:
//   - Sessions: id, row width, engine and payload versions
//   - Checkpoints: one row per reconciliation cycle with the snapshot
//     hash, the edit stream hash and any invariant violation
//   - Operations: every operation with its outcome and rejection reason
//   - Edits: the edits each cycle pushed to the edit queue
//
// # Critical Patterns
//
// Logical time: all ordering uses the seq columns handed out by
// engine.Clock, never timestamps, so a replay reads cycles back in the
// order they ran.
//
// Deterministic reads: every query orders by seq (and idx for edits).
//
// Canonical payloads: operation args and edits are stored as canonical
// JSON (ir.MarshalCanonical); hashes use ir.SnapshotHash and ir.EditsHash.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
