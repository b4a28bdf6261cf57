// Package view holds presentation adapters for engine.Session.
//
// Grid renders the board as text rows and verifies itself against the
// reconciler's snapshot after each drained batch. Tape wraps another
// presenter and keeps the edit stream it received, for traces.
package view
