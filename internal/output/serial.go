package output

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud matches the UART console of the board.
const DefaultBaud = 115200

// OpenSerial opens device as 8N1 at baud.
func OpenSerial(device string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return port, nil
}
