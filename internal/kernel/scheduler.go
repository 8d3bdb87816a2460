package kernel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrStarted is returned when tasks are added to, or started on, a scheduler
// that is already running.
var ErrStarted = errors.New("kernel: scheduler already started")

// Scheduler owns the task table and launches every task once.
// The Go runtime preempts goroutines; priorities decide launch order and are
// reported for diagnostics.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []*Task
	started bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Spawn registers a task. Tasks cannot be added once Start has been called.
func (s *Scheduler) Spawn(name string, prio Priority, fn TaskFunc) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, ErrStarted
	}
	if fn == nil {
		return nil, fmt.Errorf("kernel: task %q has no body", name)
	}
	if len(s.tasks) >= 255 {
		return nil, errors.New("kernel: task table full")
	}

	t := &Task{
		id:       TaskID(len(s.tasks) + 1),
		name:     name,
		priority: prio,
		fn:       fn,
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Tasks returns a snapshot of every registered task in creation order.
func (s *Scheduler) Tasks() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Info()
	}
	return out
}

// Start runs every task and blocks until all of them return.
// Tasks loop forever, so in production Start never returns; a task error
// cancels the others and is returned.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	order := make([]*Task, len(s.tasks))
	copy(order, s.tasks)
	s.mu.Unlock()

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].priority > order[j].priority
	})

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range order {
		t := t
		log.Printf("kernel: starting task %s (id=%d prio=%s)", t.name, t.id, t.priority)
		g.Go(func() error {
			t.state.Store(int32(StateRunning))
			if err := t.fn(gctx, t); err != nil {
				return fmt.Errorf("task %s: %w", t.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
