package tasks

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/kernel"
)

// Heartbeat toggles the status LED once per tick. It shares nothing with
// the producer or consumer.
type Heartbeat struct {
	LED  gpio.Writer
	Tick <-chan time.Time

	Observer Observer

	level bool
}

// Run toggles until ctx is cancelled. LED write errors are logged and the
// loop carries on.
func (h *Heartbeat) Run(ctx context.Context, task *kernel.Task) error {
	obs := observerOrNop(h.Observer)

	for {
		task.Block()
		select {
		case <-ctx.Done():
			return nil
		case <-h.Tick:
		}
		task.Wake()

		h.level = !h.level
		if err := h.LED.Write(h.level); err != nil {
			log.Printf("heartbeat: led write error: %v", err)
		}
		obs.HeartbeatToggled(h.level)
	}
}
