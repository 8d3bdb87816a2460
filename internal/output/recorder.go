package output

import (
	"sync"
	"sync/atomic"
	"time"
)

// Recorder is an output channel for tests. It keeps every Write call as a
// separate chunk and counts Write calls that overlapped another one.
type Recorder struct {
	// Delay, if set, is slept inside every Write to widen race windows.
	Delay time.Duration

	active   atomic.Int32
	overlaps atomic.Int32
	attempts atomic.Int32

	mu     sync.Mutex
	chunks []string
	err    error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write records p as one chunk.
func (r *Recorder) Write(p []byte) (int, error) {
	r.attempts.Add(1)
	if r.active.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	defer r.active.Add(-1)

	if r.Delay > 0 {
		time.Sleep(r.Delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.chunks = append(r.chunks, string(p))
	return len(p), nil
}

// Lines returns a copy of every recorded chunk.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.chunks))
	copy(out, r.chunks)
	return out
}

// Len returns the number of recorded chunks.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

// Overlaps returns how many Write calls started while another was running.
func (r *Recorder) Overlaps() int {
	return int(r.overlaps.Load())
}

// Attempts returns how many Write calls were made, failed ones included.
func (r *Recorder) Attempts() int {
	return int(r.attempts.Load())
}

// SetError makes subsequent writes fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
