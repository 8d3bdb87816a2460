package tasks

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/button-counter/internal/kernel"
	"github.com/sweeney/button-counter/internal/logic"
	"github.com/sweeney/button-counter/internal/mqtt"
	"github.com/sweeney/button-counter/internal/output"
)

// Consumer drains the press queue and writes one line per press through the
// shared printer.
type Consumer struct {
	Queue   *kernel.Queue[logic.Press]
	Printer *output.Printer

	// Mirror, if set, receives every written press after the lock is
	// released. Publishing happens on a separate goroutine; once MirrorDepth
	// events (MirrorBacklog if zero) are waiting, new ones are dropped.
	Mirror      mqtt.Publisher
	MirrorDepth int

	// Now stamps mirrored events. Defaults to time.Now.
	Now func() time.Time

	Observer Observer
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, task *kernel.Task) error {
	obs := observerOrNop(c.Observer)
	now := c.Now
	if now == nil {
		now = time.Now
	}

	var m *mirror
	if c.Mirror != nil {
		m = startMirror(ctx, c.Mirror, c.MirrorDepth)
		defer m.wait()
	}

	for {
		task.Block()
		n, err := c.Queue.Get(ctx, kernel.WaitForever)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("consumer: get error: %v", err)
			continue
		}
		task.Wake()

		if err := c.Printer.Print(ctx, task.ID(), logic.FormatPress(n)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("consumer: write error: %v", err)
			continue
		}
		obs.LineWritten(n)

		if m != nil && !m.offer(logic.PressEvent{Timestamp: now(), Count: n}) {
			log.Printf("consumer: mirror backlog full, dropping press %d", n)
		}
	}
}
