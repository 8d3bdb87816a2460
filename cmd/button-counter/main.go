// Command button-counter counts debounced button presses, writes one line per
// press to a serial port and blinks a heartbeat LED.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/button-counter/internal/gpio"
	"github.com/sweeney/button-counter/internal/mqtt"
	"github.com/sweeney/button-counter/internal/output"
	"github.com/sweeney/button-counter/internal/status"
	"github.com/sweeney/button-counter/internal/system"
	"github.com/sweeney/button-counter/internal/web"
)

const statusRefresh = 5 * time.Second

type options struct {
	chip       string
	pinButton  int
	pinLED     int
	sys        system.Config
	serial     string
	baud       int
	broker     string
	httpAddr   string
	printState bool
}

func main() {
	def := system.DefaultConfig()
	var o options

	flag.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip device")
	flag.IntVar(&o.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the button (active low, pulled up)")
	flag.IntVar(&o.pinLED, "pin-led", gpio.DefaultPinLED, "BCM pin number for the heartbeat LED")
	flag.DurationVar(&o.sys.Poll, "poll", def.Poll, "Button polling interval")
	flag.DurationVar(&o.sys.Debounce, "debounce", def.Debounce, "Minimum time between accepted button transitions")
	flag.DurationVar(&o.sys.Heartbeat, "heartbeat", def.Heartbeat, "LED toggle period")
	flag.IntVar(&o.sys.QueueCapacity, "queue", def.QueueCapacity, "Press queue capacity")
	flag.StringVar(&o.serial, "serial", "", "Serial device for press lines (empty for stdout)")
	flag.IntVar(&o.baud, "baud", output.DefaultBaud, "Serial baud rate")
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&o.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button state and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	input, err := gpio.NewRealReader(o.chip, o.pinButton)
	if err != nil {
		return fmt.Errorf("%w: button: %v", system.ErrHardwareInit, err)
	}
	defer input.Close()

	if o.printState {
		raw, err := input.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("Button: %s\n", buttonString(raw))
		return nil
	}

	led, err := gpio.NewRealWriter(o.chip, o.pinLED)
	if err != nil {
		return fmt.Errorf("%w: led: %v", system.ErrHardwareInit, err)
	}
	defer led.Close()

	out, err := openOutput(o.serial, o.baud)
	if err != nil {
		return fmt.Errorf("%w: output: %v", system.ErrHardwareInit, err)
	}
	defer out.Close()

	bootID := uuid.NewString()

	var (
		pub        mqtt.Publisher
		connStatus mqtt.ConnectionStatus
	)
	if o.broker != "" {
		rp, err := mqtt.NewRealPublisher(o.broker, "button-counter-"+bootID[:8])
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer rp.Close()
		pub, connStatus = rp, rp
	}

	hw := system.Hardware{Input: input, LED: led, Output: out}
	sys, tracker, err := boot(o, bootID, hw, pub, time.Now())
	if err != nil {
		return err
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	if connStatus != nil {
		go refreshStatus(context.Background(), tracker, connStatus, time.NewTicker(statusRefresh).C)
	}

	log.Printf("started: poll=%v debounce=%v heartbeat=%v queue=%d output=%s broker=%s boot=%s",
		o.sys.Poll, o.sys.Debounce, o.sys.Heartbeat, o.sys.QueueCapacity, outputName(o.serial), o.broker, bootID)

	return sys.Start(context.Background())
}

// boot builds the system around initialized hardware, wires the status
// tracker and announces the start on MQTT when a publisher is given.
func boot(o options, bootID string, hw system.Hardware, pub mqtt.Publisher, startTime time.Time) (*system.System, *status.Tracker, error) {
	tracker := status.NewTracker(startTime, bootID, status.Config{
		PollMs:        o.sys.Poll.Milliseconds(),
		DebounceMs:    o.sys.Debounce.Milliseconds(),
		HeartbeatMs:   o.sys.Heartbeat.Milliseconds(),
		QueueCapacity: o.sys.QueueCapacity,
		Serial:        o.serial,
		Broker:        o.broker,
		HTTPAddr:      o.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	opts := []system.Option{system.WithObserver(tracker)}
	if pub != nil {
		opts = append(opts, system.WithMirror(pub))
	}
	sys, err := system.Boot(hw, o.sys, opts...)
	if err != nil {
		return nil, nil, err
	}
	tracker.AttachQueue(sys.Queue)
	tracker.AttachTasks(sys.Tasks)

	if pub != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := pub.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}
	return sys, tracker, nil
}

// refreshStatus keeps the tracker's MQTT and network fields current.
func refreshStatus(ctx context.Context, tracker *status.Tracker, conn mqtt.ConnectionStatus, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			tracker.SetMQTTConnected(conn.IsConnected())
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
		}
	}
}

// nopCloser keeps stdout open when the daemon exits.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens the serial device, or stdout when device is empty.
func openOutput(device string, baud int) (io.WriteCloser, error) {
	if device == "" {
		return nopCloser{os.Stdout}, nil
	}
	return output.OpenSerial(device, baud)
}

func outputName(device string) string {
	if device == "" {
		return "stdout"
	}
	return device
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// buttonString names the raw line level. The line is pulled up, so low
// means pressed.
func buttonString(raw bool) string {
	if raw {
		return "RELEASED"
	}
	return "PRESSED"
}
