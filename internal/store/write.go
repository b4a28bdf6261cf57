package store

import (
	"context"
	"fmt"

	"github.com/roach88/tenpair/internal/engine"
	"github.com/roach88/tenpair/internal/ir"
)

// SessionInfo describes a journaled session.
type SessionInfo struct {
	ID            string
	Width         int
	EngineVersion string
	IRVersion     string
}

// CreateSession inserts a session row.
// Uses ON CONFLICT(id) DO NOTHING: re-creating a session is a no-op.
func (s *Store) CreateSession(ctx context.Context, info SessionInfo) error {
	if info.EngineVersion == "" {
		info.EngineVersion = ir.EngineVersion
	}
	if info.IRVersion == "" {
		info.IRVersion = ir.IRVersion
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, width, engine_version, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, info.ID, info.Width, info.EngineVersion, info.IRVersion)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// WriteCycle stores one cycle: its checkpoint, operations and edits, in a
// single transaction. The session must exist.
//
// Writing the same cycle twice is a no-op (ON CONFLICT DO NOTHING on
// every table), so a retried write cannot duplicate operations.
func (s *Store) WriteCycle(ctx context.Context, c engine.CycleRecord) error {
	editsHash, err := ir.EditsHash(c.Edits)
	if err != nil {
		return fmt.Errorf("write cycle %d: %w", c.Seq, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write cycle %d: begin tx: %w", c.Seq, err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints
		(session_id, cycle_seq, snapshot_hash, edits_hash, edit_count, invariant)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, cycle_seq) DO NOTHING
	`, c.SessionID, c.Seq, c.SnapshotHash, editsHash, len(c.Edits), c.Invariant)
	if err != nil {
		return fmt.Errorf("write cycle %d: checkpoint: %w", c.Seq, err)
	}

	for _, op := range c.Ops {
		args, err := marshalArgs(op.Op)
		if err != nil {
			return fmt.Errorf("write cycle %d: %w", c.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO operations
			(session_id, seq, cycle_seq, kind, args, outcome, reason, result)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, seq) DO NOTHING
		`, c.SessionID, op.Seq, c.Seq, string(op.Op.Kind), args, string(op.Outcome), op.Reason, op.Result)
		if err != nil {
			return fmt.Errorf("write cycle %d: operation %d: %w", c.Seq, op.Seq, err)
		}
	}

	for i, e := range c.Edits {
		payload, err := marshalEdit(e)
		if err != nil {
			return fmt.Errorf("write cycle %d: %w", c.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO edits (session_id, cycle_seq, idx, kind, payload)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(session_id, cycle_seq, idx) DO NOTHING
		`, c.SessionID, c.Seq, i, string(e.Kind()), payload)
		if err != nil {
			return fmt.Errorf("write cycle %d: edit %d: %w", c.Seq, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write cycle %d: commit: %w", c.Seq, err)
	}
	return nil
}
