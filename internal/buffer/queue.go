// Package buffer bridges callback-style producers to pull-style consumers.
package buffer

import (
	"context"
	"iter"
	"sync"
)

// Queue is an unbounded FIFO. Push never blocks, so a producer running in a
// callback can never be stalled by a slow or absent consumer.
//
//	q := buffer.NewQueue[string]()
//	go func() {
//	    defer q.Close()
//	    q.Push("a")
//	    q.Push("b")
//	}()
//	for item := range q.Drain(ctx) {
//	    fmt.Println(item)
//	}
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	// ready is closed and replaced whenever items arrive or the queue closes.
	ready chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{})}
}

// Push appends item. Pushing to a closed queue is a no-op.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.wake()
}

// Close stops accepting items. Items already queued are still drained.
// Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.wake()
}

// wake must be called with mu held.
func (q *Queue[T]) wake() {
	close(q.ready)
	q.ready = make(chan struct{})
}

// Pop removes the oldest item, waiting until one is available. It returns
// false once the queue is closed and empty, or when ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		if q.closed {
			q.mu.Unlock()
			var zero T
			return zero, false
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// Drain yields items in order until the queue is closed and empty or ctx is
// done.
func (q *Queue[T]) Drain(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := q.Pop(ctx)
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
