package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/mqtt"
	"github.com/sweeney/button-counter/internal/output"
	"github.com/sweeney/button-counter/internal/status"
	"github.com/sweeney/button-counter/internal/system"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env. If pi-helper changes its var names, this test fails
// and we update the constants, not the other way around.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}

	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "")
	t.Setenv(envNetworkIP, "")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.Type != "" || info.IP != "" {
		t.Errorf("expected empty Type/IP, got %q/%q", info.Type, info.IP)
	}
}

func TestOpenOutputDefaultsToStdout(t *testing.T) {
	w, err := openOutput("", output.DefaultBaud)
	if err != nil {
		t.Fatalf("openOutput: %v", err)
	}
	nc, ok := w.(nopCloser)
	if !ok || nc.Writer != os.Stdout {
		t.Errorf("expected stdout writer, got %T", w)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if outputName("") != "stdout" || outputName("/dev/ttyAMA0") != "/dev/ttyAMA0" {
		t.Error("unexpected output names")
	}
}

func TestOpenOutputMissingSerialDevice(t *testing.T) {
	if _, err := openOutput("/dev/does-not-exist-button-counter", output.DefaultBaud); err == nil {
		t.Error("expected error opening a missing serial device")
	}
}

func TestButtonString(t *testing.T) {
	if buttonString(true) != "RELEASED" {
		t.Errorf("high: got %s, want RELEASED", buttonString(true))
	}
	if buttonString(false) != "PRESSED" {
		t.Errorf("low: got %s, want PRESSED", buttonString(false))
	}
}

func testOptions() options {
	return options{
		sys:      system.DefaultConfig(),
		broker:   "tcp://localhost:1883",
		httpAddr: ":8080",
	}
}

func TestBootPublishesStartup(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "10.0.0.5")

	hw := system.Hardware{
		Input:  gpio.NewFakeReader([]bool{true}),
		LED:    gpio.NewFakeWriter(),
		Output: output.NewRecorder(),
	}
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sys, tracker, err := boot(testOptions(), "boot-1", hw, pub, start)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if sys.Consumer.Mirror == nil {
		t.Error("expected consumer to mirror presses when a publisher is configured")
	}

	events := pub.SystemEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(events))
	}
	if events[0].Event != "STARTUP" || !events[0].Retained {
		t.Errorf("startup event: got %+v", events[0])
	}

	var sj status.StatusJSON
	if err := json.Unmarshal(events[0].RawPayload, &sj); err != nil {
		t.Fatalf("startup payload: %v", err)
	}
	if sj.Status.Event != "STARTUP" {
		t.Errorf("payload event: got %q, want STARTUP", sj.Status.Event)
	}
	if sj.Status.BootID != "boot-1" {
		t.Errorf("payload boot_id: got %q, want boot-1", sj.Status.BootID)
	}
	if sj.Status.Queue.Capacity != 16 {
		t.Errorf("payload queue capacity: got %d, want 16", sj.Status.Queue.Capacity)
	}
	if len(sj.Status.Tasks) != 3 {
		t.Errorf("payload tasks: got %d, want 3", len(sj.Status.Tasks))
	}
	if sj.Status.Network == nil || sj.Status.Network.IP != "10.0.0.5" {
		t.Errorf("payload network: got %+v", sj.Status.Network)
	}

	if got := tracker.Snapshot().StartTime; !got.Equal(start) {
		t.Errorf("tracker start: got %v, want %v", got, start)
	}
}

func TestBootWithoutBroker(t *testing.T) {
	o := testOptions()
	o.broker = ""
	hw := system.Hardware{
		Input:  gpio.NewFakeReader([]bool{true}),
		LED:    gpio.NewFakeWriter(),
		Output: output.NewRecorder(),
	}

	sys, _, err := boot(o, "boot-2", hw, nil, time.Now())
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if sys.Consumer.Mirror != nil {
		t.Error("expected no mirror without a broker")
	}
}

func TestBootInvalidConfig(t *testing.T) {
	o := testOptions()
	o.sys.QueueCapacity = 0
	hw := system.Hardware{
		Input:  gpio.NewFakeReader([]bool{true}),
		LED:    gpio.NewFakeWriter(),
		Output: output.NewRecorder(),
	}
	pub := mqtt.NewFakePublisher()

	if _, _, err := boot(o, "boot-3", hw, pub, time.Now()); err == nil {
		t.Fatal("expected error for zero queue capacity")
	}
	if len(pub.SystemEvents()) != 0 {
		t.Error("no startup event should be published when boot fails")
	}
}

func TestRefreshStatus(t *testing.T) {
	tracker := status.NewTracker(time.Now(), "", status.Config{})
	conn := mqtt.NewFakePublisher()
	conn.SetConnected(true)
	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refreshStatus(ctx, tracker, conn, tick)
		close(done)
	}()

	tick <- time.Time{}
	tick <- time.Time{} // second send returns only after the first refresh finished
	cancel()
	<-done

	if !tracker.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true after refresh")
	}
}
