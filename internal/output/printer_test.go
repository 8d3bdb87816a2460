package output

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/button-counter/internal/kernel"
)

func TestPrintWritesOneChunk(t *testing.T) {
	rec := NewRecorder()
	p := NewPrinter(kernel.NewMutex("out"), rec)

	require.NoError(t, p.Print(context.Background(), 1, "Button pressed 1 times\r\n"))
	assert.Equal(t, []string{"Button pressed 1 times\r\n"}, rec.Lines())
}

func TestPrintReleasesLockOnWriteError(t *testing.T) {
	rec := NewRecorder()
	rec.SetError(errors.New("uart fault"))
	lock := kernel.NewMutex("out")
	p := NewPrinter(lock, rec)

	err := p.Print(context.Background(), 1, "x\r\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uart fault")

	_, held := lock.Holder()
	assert.False(t, held, "lock must be released after a failed write")
}

func TestPrintTimesOutWhenLockHeld(t *testing.T) {
	rec := NewRecorder()
	lock := kernel.NewMutex("out")
	require.NoError(t, lock.Acquire(context.Background(), 9, 0))

	p := NewPrinter(lock, rec)
	p.Timeout = 10 * time.Millisecond

	err := p.Print(context.Background(), 1, "x\r\n")
	require.ErrorIs(t, err, kernel.ErrLockTimeout)
	assert.Equal(t, 0, rec.Len())

	owner, held := lock.Holder()
	assert.True(t, held)
	assert.Equal(t, kernel.TaskID(9), owner)
}

func TestConcurrentWritersNeverInterleave(t *testing.T) {
	rec := NewRecorder()
	rec.Delay = 100 * time.Microsecond
	p := NewPrinter(kernel.NewMutex("out"), rec)
	ctx := context.Background()

	const (
		writers   = 6
		perWriter = 50
	)
	var wg sync.WaitGroup
	for w := 1; w <= writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				line := fmt.Sprintf("writer %d line %d\r\n", w, i)
				if err := p.Print(ctx, kernel.TaskID(w), line); err != nil {
					t.Errorf("Print: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 0, rec.Overlaps(), "writes overlapped inside the critical section")

	lines := rec.Lines()
	require.Len(t, lines, writers*perWriter)

	next := make(map[int]int)
	for _, line := range lines {
		require.True(t, strings.HasSuffix(line, "\r\n"), "truncated line %q", line)
		var w, i int
		_, err := fmt.Sscanf(strings.TrimSuffix(line, "\r\n"), "writer %d line %d", &w, &i)
		require.NoError(t, err, "malformed line %q", line)
		assert.Equal(t, next[w], i, "writer %d out of order", w)
		next[w] = i + 1
	}
}

func TestRecorderDetectsOverlap(t *testing.T) {
	rec := NewRecorder()
	rec.Delay = 100 * time.Millisecond

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rec.Write([]byte("x"))
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, rec.Overlaps())
	assert.Equal(t, 2, rec.Len())
}
