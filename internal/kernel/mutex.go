package kernel

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLockTimeout is returned by Acquire when the lock is not handed over in time.
	ErrLockTimeout = errors.New("kernel: lock timeout")

	// ErrNotHeld is returned by Release on a free lock.
	ErrNotHeld = errors.New("kernel: release of free lock")

	// ErrNotOwner is returned by Release from a task that does not hold the lock.
	ErrNotOwner = errors.New("kernel: release by non-owner")

	// ErrLockRecursive is returned when the holder tries to acquire again.
	ErrLockRecursive = errors.New("kernel: lock already held by caller")
)

// Mutex is a binary, non-recursive lock that records its holder.
// Waiters are granted the lock in arrival order: Release hands ownership
// directly to the oldest waiter instead of letting waiters race for it.
//
// Mutex does not implement priority inheritance. A low-priority holder can
// delay a higher-priority waiter for as long as it keeps the lock.
type Mutex struct {
	name string

	mu      sync.Mutex
	held    bool
	owner   TaskID
	waiters []*lockWaiter
}

type lockWaiter struct {
	owner   TaskID
	granted chan struct{}
}

// NewMutex creates a free lock.
func NewMutex(name string) *Mutex {
	return &Mutex{name: name}
}

// Name returns the lock name given at creation.
func (m *Mutex) Name() string { return m.name }

// Acquire blocks until owner holds the lock or timeout elapses.
// A zero timeout never waits; WaitForever waits without bound.
func (m *Mutex) Acquire(ctx context.Context, owner TaskID, timeout time.Duration) error {
	m.mu.Lock()
	if !m.held {
		m.held = true
		m.owner = owner
		m.mu.Unlock()
		return nil
	}
	if m.owner == owner {
		m.mu.Unlock()
		return ErrLockRecursive
	}
	if timeout == 0 {
		m.mu.Unlock()
		return ErrLockTimeout
	}
	w := &lockWaiter{owner: owner, granted: make(chan struct{})}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	expired, stop := deadline(timeout)
	defer stop()

	var err error
	select {
	case <-w.granted:
		return nil
	case <-expired:
		err = ErrLockTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-w.granted:
		// Handed over while we were giving up; keep it.
		return nil
	default:
	}
	m.removeWaiter(w)
	return err
}

// Release gives the lock to the oldest waiter, or frees it.
func (m *Mutex) Release(owner TaskID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.held {
		return ErrNotHeld
	}
	if m.owner != owner {
		return ErrNotOwner
	}

	if len(m.waiters) == 0 {
		m.held = false
		m.owner = 0
		return nil
	}
	next := m.waiters[0]
	m.waiters[0] = nil
	m.waiters = m.waiters[1:]
	m.owner = next.owner
	close(next.granted)
	return nil
}

// Holder reports the current holder, if any.
func (m *Mutex) Holder() (TaskID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner, m.held
}

// Waiting returns the number of queued waiters.
func (m *Mutex) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

func (m *Mutex) removeWaiter(w *lockWaiter) {
	for i, x := range m.waiters {
		if x == w {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}
