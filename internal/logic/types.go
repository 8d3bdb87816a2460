// Package logic contains the pure button logic: debouncing, press records and
// the text line written to the output channel.
// This package has NO external dependencies (no GPIO, serial, MQTT, or sleeping).
// Time is always injectable as tick counts.
package logic

import (
	"strconv"
	"time"
)

// Level is a raw digital line level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// Edge is the direction of an accepted transition.
type Edge string

const (
	EdgeFalling Edge = "FALLING" // HIGH -> LOW, a press on an active-low button
	EdgeRising  Edge = "RISING"  // LOW -> HIGH, a release
)

// Press is the event record passed through the queue: the running press count.
type Press uint32

// Sample is one reading of the input line.
type Sample struct {
	Level Level
	Tick  uint32
}

// Transition is a debounced change of the input level.
type Transition struct {
	Edge  Edge
	Level Level
	Tick  uint32
}

// PressEvent is a press as mirrored to external subscribers.
type PressEvent struct {
	Timestamp time.Time
	Count     Press
}

// LineTerminator ends every line written to the output channel.
const LineTerminator = "\r\n"

// FormatPress returns the status line for the n-th press.
func FormatPress(n Press) string {
	return "Button pressed " + strconv.FormatUint(uint64(n), 10) + " times" + LineTerminator
}
