package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]bool{true, false, true})

	// Read first sample
	level, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != true {
		t.Errorf("sample 0: expected true, got %v", level)
	}

	// Read second sample
	level, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != false {
		t.Errorf("sample 1: expected false, got %v", level)
	}

	// Read third sample
	level, _ = f.Read()
	if level != true {
		t.Errorf("sample 2: expected true, got %v", level)
	}

	// Fourth read should repeat last sample
	level, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != true {
		t.Errorf("sample 3 (repeat): expected true, got %v", level)
	}

	if f.Reads() != 4 {
		t.Errorf("expected 4 reads, got %d", f.Reads())
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]bool{true})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]bool{false, true})

	// Consume first sample
	f.Read()

	// Reset
	f.Reset()

	// Should read first sample again
	level, _ := f.Read()
	if level != false {
		t.Errorf("after reset: expected false, got %v", level)
	}
	if f.Reads() != 1 {
		t.Errorf("after reset: expected 1 read, got %d", f.Reads())
	}
}

func TestFakeWriterRecordsLevels(t *testing.T) {
	f := NewFakeWriter()

	f.Write(true)
	f.Write(false)
	f.Write(true)

	got := f.Levels()
	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	// Levels returns a copy
	got[0] = false
	if !f.Levels()[0] {
		t.Error("Levels should return a copy")
	}
}

func TestFakeWriterError(t *testing.T) {
	f := NewFakeWriter()
	f.SetWriteError(errors.New("stuck"))

	if err := f.Write(true); err == nil {
		t.Error("expected error")
	}
	if f.Writes() != 0 {
		t.Errorf("expected no recorded writes on error, got %d", f.Writes())
	}

	f.SetWriteError(nil)
	if err := f.Write(true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if f.Writes() != 1 {
		t.Errorf("expected 1 write, got %d", f.Writes())
	}
}

func TestFakeWriterClose(t *testing.T) {
	f := NewFakeWriter()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
