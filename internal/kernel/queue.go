// Package kernel provides the coordination primitives shared by the tasks:
// a bounded FIFO queue, an owner-tracked mutex, task bookkeeping and the
// scheduler that launches the tasks.
package kernel

import (
	"context"
	"errors"
	"time"
)

// WaitForever makes a blocking call wait without a deadline.
const WaitForever time.Duration = -1

var (
	// ErrQueueFull is returned by Put when no slot frees up within the timeout.
	ErrQueueFull = errors.New("kernel: queue full")

	// ErrQueueEmpty is returned by Get when nothing arrives within the timeout.
	ErrQueueEmpty = errors.New("kernel: queue empty")
)

// Queue is a fixed-capacity FIFO of value records.
// Values are copied in and out; the queue never resizes.
type Queue[T any] struct {
	name  string
	slots chan T
}

// NewQueue creates a queue holding at most capacity values.
func NewQueue[T any](name string, capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, errors.New("kernel: queue capacity must be positive")
	}
	return &Queue[T]{
		name:  name,
		slots: make(chan T, capacity),
	}, nil
}

// Name returns the queue name given at creation.
func (q *Queue[T]) Name() string { return q.name }

// Len returns the number of queued values.
func (q *Queue[T]) Len() int { return len(q.slots) }

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return cap(q.slots) }

// Put appends v if a slot is free within timeout.
// A zero timeout never waits. On failure nothing is written.
func (q *Queue[T]) Put(ctx context.Context, v T, timeout time.Duration) error {
	select {
	case q.slots <- v:
		return nil
	default:
	}
	if timeout == 0 {
		return ErrQueueFull
	}

	expired, stop := deadline(timeout)
	defer stop()

	select {
	case q.slots <- v:
		return nil
	case <-expired:
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get removes and returns the oldest value if one arrives within timeout.
func (q *Queue[T]) Get(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	select {
	case v := <-q.slots:
		return v, nil
	default:
	}
	if timeout == 0 {
		return zero, ErrQueueEmpty
	}

	expired, stop := deadline(timeout)
	defer stop()

	select {
	case v := <-q.slots:
		return v, nil
	case <-expired:
		return zero, ErrQueueEmpty
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// deadline returns a channel that fires after timeout, or a nil channel
// (never fires) for WaitForever.
func deadline(timeout time.Duration) (<-chan time.Time, func()) {
	if timeout < 0 {
		return nil, func() {}
	}
	t := time.NewTimer(timeout)
	return t.C, func() { t.Stop() }
}
