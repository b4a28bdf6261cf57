package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an internal failure of the session machinery.
//
// Runtime errors are never normal outcomes: a rejected move is a
// *game.RejectedError and is returned as is. RuntimeError covers:
//   - Invariant violations reported by the reconciler
//   - Popping from an empty edit queue
//   - Presenter failures while rendering an edit
//   - Replay divergence from a recorded journal
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session, if known.
	SessionID string

	// Cycle is the cycle seq the error belongs to, or 0.
	Cycle int64

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvariant indicates reconciliation found a board mutated
	// outside the append/remove-row discipline.
	ErrCodeInvariant RuntimeErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeQueueUnderflow indicates a render job found the edit queue empty.
	ErrCodeQueueUnderflow RuntimeErrorCode = "QUEUE_UNDERFLOW"

	// ErrCodePresenter indicates the presenter failed to apply or verify.
	ErrCodePresenter RuntimeErrorCode = "PRESENTER_FAILED"

	// ErrCodeReplayMismatch indicates a replay did not reproduce the journal.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.SessionID != "" && e.Cycle > 0 {
		msg = fmt.Sprintf("%s (session=%s, cycle=%d)", msg, e.SessionID, e.Cycle)
	} else if e.Cycle > 0 {
		msg = fmt.Sprintf("%s (cycle=%d)", msg, e.Cycle)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsInvariantError returns true if err is, or wraps, an invariant
// RuntimeError.
func IsInvariantError(err error) bool {
	return hasCode(err, ErrCodeInvariant)
}

// IsQueueUnderflow returns true if err is, or wraps, a queue underflow.
func IsQueueUnderflow(err error) bool {
	return hasCode(err, ErrCodeQueueUnderflow)
}

// IsReplayMismatch returns true if err is, or wraps, a replay mismatch.
func IsReplayMismatch(err error) bool {
	return hasCode(err, ErrCodeReplayMismatch)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewInvariantError wraps a reconciliation failure.
func NewInvariantError(sessionID string, cycle int64, cause error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeInvariant,
		Message:   "reconciliation invariant violated",
		SessionID: sessionID,
		Cycle:     cycle,
		Err:       cause,
	}
}

// NewQueueUnderflowError reports a render job with nothing to render.
func NewQueueUnderflowError(sessionID string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeQueueUnderflow,
		Message:   "render job found the edit queue empty",
		SessionID: sessionID,
	}
}

// NewPresenterError wraps a presenter failure.
func NewPresenterError(sessionID string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodePresenter,
		Message:   "presenter failed",
		SessionID: sessionID,
		Err:       cause,
	}
}

// NewReplayMismatchError reports the first cycle a replay diverged at.
func NewReplayMismatchError(sessionID string, cycle int64, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeReplayMismatch,
		Message:   fmt.Sprintf(format, args...),
		SessionID: sessionID,
		Cycle:     cycle,
	}
}
