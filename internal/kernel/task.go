package kernel

import (
	"context"
	"sync/atomic"
)

// TaskID identifies a task. Zero is never assigned.
type TaskID uint8

// Priority is a fixed task priority. Higher values are more urgent.
type Priority int8

// Task priorities, lowest first.
const (
	PriorityIdle Priority = iota
	PriorityLow
	PriorityBelowNormal
	PriorityNormal
	PriorityAboveNormal
	PriorityHigh
	PriorityRealtime
)

var priorityNames = [...]string{
	PriorityIdle:        "idle",
	PriorityLow:         "low",
	PriorityBelowNormal: "below-normal",
	PriorityNormal:      "normal",
	PriorityAboveNormal: "above-normal",
	PriorityHigh:        "high",
	PriorityRealtime:    "realtime",
}

func (p Priority) String() string {
	if p < 0 || int(p) >= len(priorityNames) {
		return "unknown"
	}
	return priorityNames[p]
}

// State is the scheduling state of a task.
type State int32

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	case StateSuspended:
		return "SUSPENDED"
	}
	return "UNKNOWN"
}

// TaskFunc is the body of a task. It loops until ctx is cancelled.
type TaskFunc func(ctx context.Context, t *Task) error

// Task is a long-lived unit of work created once at boot.
type Task struct {
	id       TaskID
	name     string
	priority Priority
	fn       TaskFunc

	state  atomic.Int32
	cycles atomic.Uint64
}

// ID returns the task identity used as lock owner.
func (t *Task) ID() TaskID { return t.id }

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Priority returns the fixed priority.
func (t *Task) Priority() Priority { return t.priority }

// State returns the current scheduling state.
func (t *Task) State() State { return State(t.state.Load()) }

// Block marks the task as waiting at a suspension point.
func (t *Task) Block() { t.state.Store(int32(StateBlocked)) }

// Wake marks the task as running again and counts one loop iteration.
func (t *Task) Wake() {
	t.state.Store(int32(StateRunning))
	t.cycles.Add(1)
}

// Info is a point-in-time copy of a task's bookkeeping.
type Info struct {
	ID       TaskID
	Name     string
	Priority Priority
	State    State
	Cycles   uint64
}

// Info returns a snapshot of the task.
func (t *Task) Info() Info {
	return Info{
		ID:       t.id,
		Name:     t.name,
		Priority: t.priority,
		State:    t.State(),
		Cycles:   t.cycles.Load(),
	}
}
