package tasks

import (
	"context"
	"log"

	"github.com/sweeney/button-counter/internal/logic"
	"github.com/sweeney/button-counter/internal/mqtt"
)

// MirrorBacklog is the number of press events that may wait for a slow
// publisher before new ones are dropped.
const MirrorBacklog = 16

// mirror hands press events to a publisher on its own goroutine so the
// consumer never waits on the broker.
type mirror struct {
	pub  mqtt.Publisher
	ch   chan logic.PressEvent
	done chan struct{}
}

func startMirror(ctx context.Context, pub mqtt.Publisher, backlog int) *mirror {
	if backlog <= 0 {
		backlog = MirrorBacklog
	}
	m := &mirror{
		pub:  pub,
		ch:   make(chan logic.PressEvent, backlog),
		done: make(chan struct{}),
	}
	go m.run(ctx)
	return m
}

// offer queues ev without waiting. It reports false when the backlog is full.
func (m *mirror) offer(ev logic.PressEvent) bool {
	select {
	case m.ch <- ev:
		return true
	default:
		return false
	}
}

func (m *mirror) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.ch:
			if err := m.pub.Publish(ev); err != nil {
				log.Printf("consumer: publish error: %v", err)
			}
		}
	}
}

// wait blocks until the publishing goroutine has returned.
func (m *mirror) wait() {
	<-m.done
}
