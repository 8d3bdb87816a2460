package logic

// Debouncer turns raw samples into accepted transitions.
//
// Unless it is seeded with a known idle level, the first sample sets the
// baseline level and yields nothing. After that a
// sample whose level differs from the accepted level is a transition, and it
// is accepted only when at least the stable interval has elapsed since the
// previous accepted transition. Rejected samples leave the accepted level
// alone, so a burst of bounces collapses into the first edge of the burst.
//
// Tick arithmetic is modulo 2^32: elapsed time is correct only while samples
// being compared are less than one counter wrap apart.
type Debouncer struct {
	stable uint32

	level     Level
	baselined bool

	lastAccepted uint32
	accepted     bool

	rejected uint32
}

// NewDebouncer creates a debouncer requiring stableTicks between accepted
// transitions.
func NewDebouncer(stableTicks uint32) *Debouncer {
	return &Debouncer{stable: stableTicks}
}

// NewDebouncerWithLevel creates a debouncer whose accepted level starts at
// idle. The first sample that differs from idle is accepted immediately, so
// a button already held at start-up counts as a press.
func NewDebouncerWithLevel(stableTicks uint32, idle Level) *Debouncer {
	return &Debouncer{stable: stableTicks, level: idle, baselined: true}
}

// Process takes a new sample and reports an accepted transition, if any.
func (d *Debouncer) Process(s Sample) (Transition, bool) {
	if !d.baselined {
		d.level = s.Level
		d.baselined = true
		return Transition{}, false
	}

	if s.Level == d.level {
		return Transition{}, false
	}

	if d.accepted && s.Tick-d.lastAccepted < d.stable {
		d.rejected++
		return Transition{}, false
	}

	edge := EdgeRising
	if d.level == High && s.Level == Low {
		edge = EdgeFalling
	}
	d.level = s.Level
	d.lastAccepted = s.Tick
	d.accepted = true

	return Transition{Edge: edge, Level: s.Level, Tick: s.Tick}, true
}

// Level returns the accepted level and whether a baseline exists yet.
func (d *Debouncer) Level() (Level, bool) {
	return d.level, d.baselined
}

// StableTicks returns the configured stable interval.
func (d *Debouncer) StableTicks() uint32 {
	return d.stable
}

// Rejected returns how many transitions were suppressed as bounce.
func (d *Debouncer) Rejected() uint32 {
	return d.rejected
}
