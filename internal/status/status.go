// Package status provides a thread-safe status tracker for the button-counter daemon.
// Tasks report into it; the HTTP server and MQTT lifecycle events read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-counter/internal/kernel"
	"github.com/sweeney/button-counter/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	DebounceMs    int64
	HeartbeatMs   int64
	QueueCapacity int
	Serial        string // serial device ("" = stdout)
	Broker        string // "" = MQTT disabled
	HTTPAddr      string
}

// Counts tracks press bookkeeping since startup.
type Counts struct {
	Presses uint32 // accepted falling edges (the producer's counter)
	Dropped uint32 // presses lost because the queue was full
	Written uint32 // lines written to the output channel
	Toggles uint64 // heartbeat LED toggles
}

// QueueStats reports queue occupancy.
type QueueStats interface {
	Len() int
	Cap() int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	BootID        string
	Button        logic.Level
	ButtonKnown   bool
	LED           bool
	LastWritten   logic.Press
	Counts        Counts
	QueueDepth    int
	QueueCapacity int
	Tasks         []kernel.Info
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu    sync.RWMutex
	snap  Snapshot
	queue QueueStats
	tasks func() []kernel.Info
}

// NewTracker creates a Tracker with the given start time, boot ID and config.
func NewTracker(startTime time.Time, bootID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			BootID:    bootID,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// AttachQueue makes snapshots report the queue's live occupancy.
func (t *Tracker) AttachQueue(q QueueStats) {
	t.mu.Lock()
	t.queue = q
	t.mu.Unlock()
}

// AttachTasks makes snapshots include the task table.
func (t *Tracker) AttachTasks(tasks func() []kernel.Info) {
	t.mu.Lock()
	t.tasks = tasks
	t.mu.Unlock()
}

// ButtonSampled records the latest debounced button level.
func (t *Tracker) ButtonSampled(level logic.Level) {
	t.mu.Lock()
	t.snap.Button = level
	t.snap.ButtonKnown = true
	t.mu.Unlock()
}

// PressCounted records that the producer counted press n.
func (t *Tracker) PressCounted(n logic.Press) {
	t.mu.Lock()
	t.snap.Counts.Presses = uint32(n)
	t.mu.Unlock()
}

// PressDropped records that press n never made it into the queue.
func (t *Tracker) PressDropped(n logic.Press) {
	t.mu.Lock()
	t.snap.Counts.Dropped++
	t.mu.Unlock()
}

// LineWritten records that the line for press n reached the output channel.
func (t *Tracker) LineWritten(n logic.Press) {
	t.mu.Lock()
	t.snap.Counts.Written++
	t.snap.LastWritten = n
	t.mu.Unlock()
}

// HeartbeatToggled records the LED level after a toggle.
func (t *Tracker) HeartbeatToggled(level bool) {
	t.mu.Lock()
	t.snap.Counts.Toggles++
	t.snap.LED = level
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	queue, tasks := t.queue, t.tasks
	t.mu.RUnlock()

	if queue != nil {
		s.QueueDepth = queue.Len()
		s.QueueCapacity = queue.Cap()
	}
	if tasks != nil {
		s.Tasks = tasks()
	}
	s.Now = time.Now()
	return s
}
