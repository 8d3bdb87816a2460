package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/kernel"
	"github.com/sweeney/button-counter/internal/logic"
)

// Producer polls the button, debounces it and queues a count for every
// accepted press (falling edge; the line is pulled up).
//
// It never waits on the queue: a full queue drops the press without retry
// and the counter keeps its value.
type Producer struct {
	Input    gpio.Reader
	Queue    *kernel.Queue[logic.Press]
	Debounce *logic.Debouncer

	// Interval is the poll period in ticks. Samples are stamped with the
	// poll count times Interval, so consecutive polls are exactly one
	// interval apart however late the goroutine wakes.
	Interval uint32

	// Ticks, if set, replaces the poll-count stamp.
	Ticks func() uint32

	// Tick paces the polling loop.
	Tick <-chan time.Time

	Observer Observer

	count logic.Press
	polls uint32
}

// Count returns the number of presses counted so far.
// Only meaningful once Run has returned.
func (p *Producer) Count() logic.Press {
	return p.count
}

// Run polls until ctx is cancelled.
func (p *Producer) Run(ctx context.Context, task *kernel.Task) error {
	obs := observerOrNop(p.Observer)

	for {
		task.Block()
		select {
		case <-ctx.Done():
			return nil
		case <-p.Tick:
		}
		task.Wake()
		p.polls++
		tick := p.sampleTick()

		raw, err := p.Input.Read()
		if err != nil {
			log.Printf("producer: input read error: %v", err)
			continue
		}

		tr, ok := p.Debounce.Process(logic.Sample{Level: logic.Level(raw), Tick: tick})
		if level, known := p.Debounce.Level(); known {
			obs.ButtonSampled(level)
		}
		if !ok || tr.Edge != logic.EdgeFalling {
			continue
		}

		p.count++
		obs.PressCounted(p.count)

		if err := p.Queue.Put(ctx, p.count, 0); err != nil {
			if errors.Is(err, kernel.ErrQueueFull) {
				obs.PressDropped(p.count)
				continue
			}
			return fmt.Errorf("put %s: %w", p.Queue.Name(), err)
		}
	}
}

func (p *Producer) sampleTick() uint32 {
	if p.Ticks != nil {
		return p.Ticks()
	}
	return p.polls * p.Interval
}
