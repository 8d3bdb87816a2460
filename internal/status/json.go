package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	BootID        string       `json:"boot_id"`
	Button        string       `json:"button"`
	LED           string       `json:"led"`
	LastWritten   uint32       `json:"last_written"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Queue         QueueJSON    `json:"queue"`
	Tasks         []TaskJSON   `json:"tasks"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of press counts.
type CountsJSON struct {
	Presses uint32 `json:"presses"`
	Dropped uint32 `json:"dropped"`
	Written uint32 `json:"written"`
	Toggles uint64 `json:"heartbeat_toggles"`
}

// QueueJSON reports queue occupancy.
type QueueJSON struct {
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`
}

// TaskJSON is one row of the task table.
type TaskJSON struct {
	ID       uint8  `json:"id"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
	State    string `json:"state"`
	Cycles   uint64 `json:"cycles"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64  `json:"poll_ms"`
	DebounceMs    int64  `json:"debounce_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	QueueCapacity int    `json:"queue_capacity"`
	Serial        string `json:"serial"`
	Broker        string `json:"broker,omitempty"`
	HTTPAddr      string `json:"http_addr"`
}

// ButtonString renders the debounced button level for humans.
func ButtonString(snap Snapshot) string {
	if !snap.ButtonKnown {
		return "UNKNOWN"
	}
	if snap.Button {
		return "RELEASED" // pulled up
	}
	return "PRESSED"
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	serial := snap.Config.Serial
	if serial == "" {
		serial = "stdout"
	}

	inner := StatusInner{
		BootID:        snap.BootID,
		Button:        ButtonString(snap),
		LED:           onOff(snap.LED),
		LastWritten:   uint32(snap.LastWritten),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
		},
		Counts: CountsJSON{
			Presses: snap.Counts.Presses,
			Dropped: snap.Counts.Dropped,
			Written: snap.Counts.Written,
			Toggles: snap.Counts.Toggles,
		},
		Queue: QueueJSON{Depth: snap.QueueDepth, Capacity: snap.QueueCapacity},
		Tasks: make([]TaskJSON, 0, len(snap.Tasks)),
		Config: ConfigJSON{
			PollMs:        snap.Config.PollMs,
			DebounceMs:    snap.Config.DebounceMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			QueueCapacity: snap.Config.QueueCapacity,
			Serial:        serial,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
		},
	}
	for _, ti := range snap.Tasks {
		inner.Tasks = append(inner.Tasks, TaskJSON{
			ID:       uint8(ti.ID),
			Name:     ti.Name,
			Priority: ti.Priority.String(),
			State:    ti.State.String(),
			Cycles:   ti.Cycles,
		})
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
