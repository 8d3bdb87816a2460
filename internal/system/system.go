// Package system wires the queue, the output lock and the three tasks
// together and hands them to the scheduler.
package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/kernel"
	"github.com/sweeney/button-counter/internal/logic"
	"github.com/sweeney/button-counter/internal/mqtt"
	"github.com/sweeney/button-counter/internal/output"
	"github.com/sweeney/button-counter/internal/tasks"
)

var (
	// ErrHardwareInit wraps failures to bring up the input, LED or output.
	ErrHardwareInit = errors.New("system: hardware init failed")

	// ErrInvalidConfig is returned by Boot for unusable settings.
	ErrInvalidConfig = errors.New("system: invalid config")
)

// Task names and priorities.
const (
	TaskProducer  = "producer"
	TaskConsumer  = "consumer"
	TaskHeartbeat = "heartbeat"

	PriorityProducer  = kernel.PriorityBelowNormal
	PriorityConsumer  = kernel.PriorityBelowNormal
	PriorityHeartbeat = kernel.PriorityLow
)

// Config holds timing and sizing.
type Config struct {
	Poll          time.Duration
	Debounce      time.Duration
	Heartbeat     time.Duration
	QueueCapacity int
}

// DefaultConfig returns the stock settings: 50ms poll and debounce, 500ms
// heartbeat, 16 queued presses.
func DefaultConfig() Config {
	return Config{
		Poll:          50 * time.Millisecond,
		Debounce:      50 * time.Millisecond,
		Heartbeat:     500 * time.Millisecond,
		QueueCapacity: 16,
	}
}

// Validate checks cfg for values the tasks cannot run with.
func (c Config) Validate() error {
	if c.Poll < kernel.TickPeriod {
		return fmt.Errorf("%w: poll interval %v is shorter than one tick", ErrInvalidConfig, c.Poll)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("%w: heartbeat period %v must be positive", ErrInvalidConfig, c.Heartbeat)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce %v must not be negative", ErrInvalidConfig, c.Debounce)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue capacity %d must be positive", ErrInvalidConfig, c.QueueCapacity)
	}
	return nil
}

// Hardware is the set of devices the tasks drive.
type Hardware struct {
	Input  gpio.Reader
	LED    gpio.Writer
	Output io.Writer
}

func (hw Hardware) check() error {
	switch {
	case hw.Input == nil:
		return fmt.Errorf("%w: no button input", ErrHardwareInit)
	case hw.LED == nil:
		return fmt.Errorf("%w: no led output", ErrHardwareInit)
	case hw.Output == nil:
		return fmt.Errorf("%w: no output channel", ErrHardwareInit)
	}
	return nil
}

// Option adjusts Boot.
type Option func(*options)

type options struct {
	observer  tasks.Observer
	mirror    mqtt.Publisher
	pollTick  <-chan time.Time
	beatTick  <-chan time.Time
	tickCount func() uint32
}

// WithObserver reports task activity to o.
func WithObserver(o tasks.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithMirror publishes every written press to p.
func WithMirror(p mqtt.Publisher) Option {
	return func(opts *options) { opts.mirror = p }
}

// WithPollTicks drives the producer from ch instead of a ticker.
func WithPollTicks(ch <-chan time.Time) Option {
	return func(opts *options) { opts.pollTick = ch }
}

// WithHeartbeatTicks drives the heartbeat from ch instead of a ticker.
func WithHeartbeatTicks(ch <-chan time.Time) Option {
	return func(opts *options) { opts.beatTick = ch }
}

// WithTickCount replaces the poll count as the debounce tick source.
func WithTickCount(fn func() uint32) Option {
	return func(opts *options) { opts.tickCount = fn }
}

// System owns the shared objects for the life of the process.
type System struct {
	Queue     *kernel.Queue[logic.Press]
	Lock      *kernel.Mutex
	Scheduler *kernel.Scheduler
	Printer   *output.Printer

	Producer  *tasks.Producer
	Consumer  *tasks.Consumer
	Heartbeat *tasks.Heartbeat

	tickers []*time.Ticker
}

// Boot validates cfg, creates the queue and lock once and registers the
// three tasks. Nothing runs until Start.
func Boot(hw Hardware, cfg Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := hw.check(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := &System{Scheduler: kernel.NewScheduler()}

	q, err := kernel.NewQueue[logic.Press]("presses", cfg.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.Queue = q
	s.Lock = kernel.NewMutex("output")
	s.Printer = output.NewPrinter(s.Lock, hw.Output)

	if o.pollTick == nil {
		o.pollTick = s.ticker(cfg.Poll)
	}
	if o.beatTick == nil {
		o.beatTick = s.ticker(cfg.Heartbeat)
	}

	s.Producer = &tasks.Producer{
		Input:    hw.Input,
		Queue:    s.Queue,
		Debounce: logic.NewDebouncerWithLevel(kernel.DurationToTicks(cfg.Debounce), logic.High),
		Interval: kernel.DurationToTicks(cfg.Poll),
		Ticks:    o.tickCount,
		Tick:     o.pollTick,
		Observer: o.observer,
	}
	s.Consumer = &tasks.Consumer{
		Queue:    s.Queue,
		Printer:  s.Printer,
		Mirror:   o.mirror,
		Observer: o.observer,
	}
	s.Heartbeat = &tasks.Heartbeat{
		LED:      hw.LED,
		Tick:     o.beatTick,
		Observer: o.observer,
	}

	spawns := []struct {
		name string
		prio kernel.Priority
		fn   kernel.TaskFunc
	}{
		{TaskProducer, PriorityProducer, s.Producer.Run},
		{TaskConsumer, PriorityConsumer, s.Consumer.Run},
		{TaskHeartbeat, PriorityHeartbeat, s.Heartbeat.Run},
	}
	for _, sp := range spawns {
		if _, err := s.Scheduler.Spawn(sp.name, sp.prio, sp.fn); err != nil {
			s.stopTickers()
			return nil, fmt.Errorf("spawn %s: %w", sp.name, err)
		}
	}
	return s, nil
}

// Tasks returns the task table.
func (s *System) Tasks() []kernel.Info {
	return s.Scheduler.Tasks()
}

// Start runs the tasks and blocks. With a context that is never cancelled
// it does not return unless a task fails.
func (s *System) Start(ctx context.Context) error {
	defer s.stopTickers()
	return s.Scheduler.Start(ctx)
}

func (s *System) ticker(d time.Duration) <-chan time.Time {
	t := time.NewTicker(d)
	s.tickers = append(s.tickers, t)
	return t.C
}

func (s *System) stopTickers() {
	for _, t := range s.tickers {
		t.Stop()
	}
	s.tickers = nil
}
