package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tenpair/internal/engine"
)

// ErrSessionNotFound is returned when a session id is not in the journal.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession returns the session row for id.
func (s *Store) ReadSession(ctx context.Context, id string) (SessionInfo, error) {
	var info SessionInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT id, width, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&info.ID, &info.Width, &info.EngineVersion, &info.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, fmt.Errorf("read session %q: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("read session %q: %w", id, err)
	}
	return info, nil
}

// ListSessions returns every session ordered by id. UUIDv7 ids sort by
// creation time.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, width, engine_version, ir_version
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Width, &info.EngineVersion, &info.IRVersion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadCycles returns every recorded cycle of a session in seq order, with
// operations in seq order and edits in queue order.
//
// Returns an empty slice (not nil) if the session has no cycles.
func (s *Store) ReadCycles(ctx context.Context, sessionID string) ([]engine.CycleRecord, error) {
	cycles, err := s.readCheckpoints(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]int, len(cycles))
	for i, c := range cycles {
		index[c.Seq] = i
	}

	if err := s.readOperations(ctx, sessionID, cycles, index); err != nil {
		return nil, err
	}
	if err := s.readEdits(ctx, sessionID, cycles, index); err != nil {
		return nil, err
	}
	return cycles, nil
}

func (s *Store) readCheckpoints(ctx context.Context, sessionID string) ([]engine.CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle_seq, snapshot_hash, invariant
		FROM checkpoints
		WHERE session_id = ?
		ORDER BY cycle_seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	cycles := []engine.CycleRecord{}
	for rows.Next() {
		c := engine.CycleRecord{SessionID: sessionID}
		if err := rows.Scan(&c.Seq, &c.SnapshotHash, &c.Invariant); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return cycles, nil
}

func (s *Store) readOperations(ctx context.Context, sessionID string, cycles []engine.CycleRecord, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, cycle_seq, kind, args, outcome, reason, result
		FROM operations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec       engine.OperationRecord
			cycleSeq  int64
			kind, arg string
			outcome   string
		)
		if err := rows.Scan(&rec.Seq, &cycleSeq, &kind, &arg, &outcome, &rec.Reason, &rec.Result); err != nil {
			return fmt.Errorf("scan operation: %w", err)
		}
		op, err := unmarshalOperation(kind, arg)
		if err != nil {
			return fmt.Errorf("operation %d: %w", rec.Seq, err)
		}
		rec.Op = op
		rec.Outcome = engine.Outcome(outcome)

		i, ok := index[cycleSeq]
		if !ok {
			return fmt.Errorf("operation %d references missing cycle %d", rec.Seq, cycleSeq)
		}
		cycles[i].Ops = append(cycles[i].Ops, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate operations: %w", err)
	}
	return nil
}

func (s *Store) readEdits(ctx context.Context, sessionID string, cycles []engine.CycleRecord, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle_seq, idx, payload
		FROM edits
		WHERE session_id = ?
		ORDER BY cycle_seq ASC, idx ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cycleSeq int64
			idx      int
			payload  string
		)
		if err := rows.Scan(&cycleSeq, &idx, &payload); err != nil {
			return fmt.Errorf("scan edit: %w", err)
		}
		e, err := unmarshalEdit(payload)
		if err != nil {
			return fmt.Errorf("cycle %d edit %d: %w", cycleSeq, idx, err)
		}
		i, ok := index[cycleSeq]
		if !ok {
			return fmt.Errorf("edit %d references missing cycle %d", idx, cycleSeq)
		}
		cycles[i].Edits = append(cycles[i].Edits, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate edits: %w", err)
	}
	return nil
}

// LastSeq returns the largest seq recorded for a session, or 0. A session
// continued in a new process starts its clock here (engine.NewClockAt).
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT cycle_seq AS seq FROM checkpoints WHERE session_id = ?
			UNION ALL
			SELECT seq FROM operations WHERE session_id = ?
		)
	`, sessionID, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// CountEdits returns how many edits a session has journaled.
func (s *Store) CountEdits(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edits WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count edits: %w", err)
	}
	return n, nil
}
