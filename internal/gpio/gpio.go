// Package gpio provides GPIO line access with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads a single input line.
type Reader interface {
	// Read returns the raw line level (true = high).
	// The button is active low: pressed reads false.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives a single output line.
type Writer interface {
	// Write sets the line level (true = high).
	Write(level bool) error

	// Close releases GPIO resources.
	Close() error
}

// Defaults (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 17 // push button to GND, internal pull-up
	DefaultPinLED    = 27 // heartbeat LED
)
