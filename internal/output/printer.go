// Package output owns the single text output channel. Every write goes
// through a Printer, which holds the shared lock for exactly one Write call.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sweeney/button-counter/internal/kernel"
)

// Printer serializes writers on one output channel.
type Printer struct {
	lock *kernel.Mutex
	w    io.Writer

	// Timeout bounds the wait for the lock. kernel.WaitForever by default.
	Timeout time.Duration
}

// NewPrinter creates a Printer writing to w under lock.
func NewPrinter(lock *kernel.Mutex, w io.Writer) *Printer {
	return &Printer{lock: lock, w: w, Timeout: kernel.WaitForever}
}

// Print writes line as a single Write call while owner holds the lock.
// The lock is released on every path out of the critical section.
func (p *Printer) Print(ctx context.Context, owner kernel.TaskID, line string) (err error) {
	if err := p.lock.Acquire(ctx, owner, p.Timeout); err != nil {
		return fmt.Errorf("acquire %s: %w", p.lock.Name(), err)
	}
	defer func() {
		if rerr := p.lock.Release(owner); rerr != nil {
			err = errors.Join(err, fmt.Errorf("release %s: %w", p.lock.Name(), rerr))
		}
	}()

	if _, err := io.WriteString(p.w, line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

