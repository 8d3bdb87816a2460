// Package tasks holds the long-running task bodies: the debounced edge
// producer, the serializing consumer and the heartbeat.
package tasks

import "github.com/sweeney/button-counter/internal/logic"

// Observer receives bookkeeping callbacks from the tasks.
// status.Tracker implements it. Calls must not block.
type Observer interface {
	ButtonSampled(level logic.Level)
	PressCounted(n logic.Press)
	PressDropped(n logic.Press)
	LineWritten(n logic.Press)
	HeartbeatToggled(level bool)
}

type nopObserver struct{}

func (nopObserver) ButtonSampled(logic.Level) {}
func (nopObserver) PressCounted(logic.Press)  {}
func (nopObserver) PressDropped(logic.Press)  {}
func (nopObserver) LineWritten(logic.Press)   {}
func (nopObserver) HeartbeatToggled(bool)     {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
