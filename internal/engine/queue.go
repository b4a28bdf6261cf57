package engine

import (
	"sync"

	"github.com/roach88/tenpair/internal/ir"
)

// fifo is a thread-safe unbounded FIFO.
//
// Both the edit queue and the scheduler's job queue are fifos. Producers
// (Session operations) and the consumer (the scheduler goroutine) may run
// on different goroutines.
type fifo[T any] struct {
	mu    sync.Mutex
	items []T
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{items: make([]T, 0, 64)}
}

// push appends items at the back, preserving their order.
func (q *fifo[T]) push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// pop removes and returns the front item.
func (q *fifo[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]

	// Clear the slot so the backing array does not pin the item.
	q.items[0] = zero
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return item, true
}

func (q *fifo[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// EditQueue holds reconciliation edits waiting to be rendered.
//
// Edits leave the queue in exactly the order they were pushed. The queue
// is unbounded so a long reconciliation (a fresh generation can append
// dozens of tiles) never blocks the caller.
type EditQueue struct {
	q *fifo[ir.Edit]
}

// NewEditQueue creates an empty edit queue.
func NewEditQueue() *EditQueue {
	return &EditQueue{q: newFIFO[ir.Edit]()}
}

// Push appends edits at the back of the queue.
func (q *EditQueue) Push(edits ...ir.Edit) {
	q.q.push(edits...)
}

// Pop removes and returns the front edit.
// Returns (nil, false) if the queue is empty.
func (q *EditQueue) Pop() (ir.Edit, bool) {
	return q.q.pop()
}

// Len returns the number of queued edits.
func (q *EditQueue) Len() int {
	return q.q.len()
}
