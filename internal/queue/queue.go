// Package queue provides the unbounded single-consumer queues that connect
// input listeners, the consumer loop and the persistence writer.
package queue

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned by TrySend once the queue has been closed and by
	// Recv once a closed queue has been drained.
	ErrClosed = errors.New("queue closed")
	// ErrFull is returned by TrySend when a bounded queue is at its limit.
	ErrFull = errors.New("queue full")
)

// Queue is a FIFO with non-blocking producers and a single consumer.
// Any number of goroutines may call TrySend; only one goroutine may receive.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	limit  int
	closed bool
	notify chan struct{}
}

// New returns an unbounded queue.
func New[T any]() *Queue[T] {
	return NewBounded[T](0)
}

// NewBounded returns a queue holding at most limit pending items.
// A limit <= 0 means unbounded.
func NewBounded[T any](limit int) *Queue[T] {
	if limit < 0 {
		limit = 0
	}
	return &Queue[T]{limit: limit, notify: make(chan struct{}, 1)}
}

// TrySend enqueues v without ever blocking on the consumer.
func (q *Queue[T]) TrySend(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		q.mu.Unlock()
		return ErrFull
	}
	q.items = append(q.items, v)
	// notify is only closed under mu, so the signal cannot race Close.
	select {
	case q.notify <- struct{}{}:
	default:
	}
	q.mu.Unlock()
	return nil
}

// TryRecv pops the oldest item if one is pending.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Recv blocks until an item is available, the queue is closed and drained,
// or ctx is done.
func (q *Queue[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if v, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Ready fires after new items arrive or the queue is closed. Consumers that
// multiplex several sources select on it and then drain with TryRecv.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.notify
}

// Close rejects further sends. Items already queued can still be received.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.notify)
	q.mu.Unlock()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of pending items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) popLocked() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}
