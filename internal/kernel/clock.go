package kernel

import "time"

// TickPeriod is the length of one scheduler tick. Tick counts are uint32 and
// wrap after about 49.7 days; differences between them are taken modulo 2^32.
const TickPeriod = time.Millisecond

// DurationToTicks converts d to whole ticks, rounding down.
func DurationToTicks(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / TickPeriod)
}
