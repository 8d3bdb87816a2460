package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/kernel"
	"github.com/sweeney/button-counter/internal/logic"
	"github.com/sweeney/button-counter/internal/mqtt"
	"github.com/sweeney/button-counter/internal/output"
	"github.com/sweeney/button-counter/internal/status"
	"github.com/sweeney/button-counter/internal/system"
	"github.com/sweeney/button-counter/internal/web"
)

// TestIntegrationDebounceToPayload walks raw samples through the debouncer,
// the line format and the MQTT payload without any goroutines.
func TestIntegrationDebounceToPayload(t *testing.T) {
	// Polled every 10ms with a 50ms debounce.
	samples := []bool{
		true, true, true, // t=0..20ms released (baseline at 0)
		false, true, false, // t=30..50ms press with bounce (press at 30ms)
		false, false, false, // t=60..80ms held
		true, true, // t=90..100ms released (release at 90ms)
		false, // t=110ms press too soon after release, rejected
		false, false, false, false, // t=120..150ms held (press at 140ms)
		true, // t=160ms
	}

	reader := gpio.NewFakeReader(samples)
	publisher := mqtt.NewFakePublisher()
	deb := logic.NewDebouncer(kernel.DurationToTicks(50 * time.Millisecond))
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var (
		count logic.Press
		lines []string
	)
	for i := range samples {
		raw, err := reader.Read()
		if err != nil {
			t.Fatalf("sample %d: gpio read error: %v", i, err)
		}
		tick := uint32(i * 10)
		tr, ok := deb.Process(logic.Sample{Level: logic.Level(raw), Tick: tick})
		if !ok || tr.Edge != logic.EdgeFalling {
			continue
		}
		count++
		lines = append(lines, logic.FormatPress(count))
		ev := logic.PressEvent{Timestamp: startTime.Add(time.Duration(tick) * time.Millisecond), Count: count}
		if err := publisher.Publish(ev); err != nil {
			t.Fatalf("sample %d: publish error: %v", i, err)
		}
	}

	want := []string{"Button pressed 1 times\r\n", "Button pressed 2 times\r\n"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}

	payloads := publisher.Payloads()
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	var p mqtt.Payload
	if err := json.Unmarshal(payloads[1], &p); err != nil {
		t.Fatalf("invalid payload JSON: %v", err)
	}
	if p.Button.Event != mqtt.EventPressed {
		t.Errorf("event: got %q, want %q", p.Button.Event, mqtt.EventPressed)
	}
	if p.Button.Count != 2 {
		t.Errorf("count: got %d, want 2", p.Button.Count)
	}
	// RFC3339 drops the 140ms.
	if p.Button.Timestamp != "2026-01-01T12:00:00Z" {
		t.Errorf("timestamp: got %q, want 2026-01-01T12:00:00Z", p.Button.Timestamp)
	}
}

// TestIntegrationSystemWithStatusServer runs the booted system with fakes
// and reads the result back over the status endpoint.
func TestIntegrationSystemWithStatusServer(t *testing.T) {
	samples := []bool{true, false, true, false, true}
	reader := gpio.NewFakeReader(samples)
	led := gpio.NewFakeWriter()
	rec := output.NewRecorder()
	publisher := mqtt.NewFakePublisher()
	poll := make(chan time.Time)
	beat := make(chan time.Time)

	tracker := status.NewTracker(time.Now(), "integration", status.Config{QueueCapacity: 16, HTTPAddr: ":0"})
	sys, err := system.Boot(system.Hardware{Input: reader, LED: led, Output: rec}, system.DefaultConfig(),
		system.WithPollTicks(poll),
		system.WithHeartbeatTicks(beat),
		system.WithTickCount(func() func() uint32 {
			var n uint32
			return func() uint32 { n += 50; return n }
		}()),
		system.WithObserver(tracker),
		system.WithMirror(publisher),
	)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	tracker.AttachQueue(sys.Queue)
	tracker.AttachTasks(sys.Tasks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sys.Start(ctx) }()

	for range samples {
		poll <- time.Time{}
	}
	beat <- time.Time{}

	deadline := time.Now().Add(2 * time.Second)
	for snap := tracker.Snapshot(); snap.Counts.Written < 2 || snap.Counts.Toggles < 1 || len(publisher.Events()) < 2; snap = tracker.Snapshot() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: lines=%d", rec.Len())
		}
		time.Sleep(time.Millisecond)
	}

	ts := httptest.NewServer(web.New(":0", tracker).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var sj status.StatusJSON
	if err := json.Unmarshal(body, &sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sj.Status.Counts.Presses != 2 || sj.Status.Counts.Written != 2 {
		t.Errorf("counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.LastWritten != 2 {
		t.Errorf("last_written: got %d, want 2", sj.Status.LastWritten)
	}
	if sj.Status.LED != "ON" {
		t.Errorf("led: got %q, want ON", sj.Status.LED)
	}
	if len(sj.Status.Tasks) != 3 {
		t.Errorf("tasks: got %d, want 3", len(sj.Status.Tasks))
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("start: %v", err)
	}

	if got := len(publisher.Events()); got != 2 {
		t.Errorf("mirrored events: got %d, want 2", got)
	}
}
