// Package ui provides the Bubble Tea dashboard for the mining workers.
package ui

import (
	"time"

	hwdomain "github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	nodedomain "github.com/mmrrnn/universe/business/node/domain"
)

// Message types for TUI updates

// NodeStatusMsg is sent for every base node snapshot.
type NodeStatusMsg struct {
	Status nodedomain.BaseNodeStatus
}

// BlockMsg is sent when the chain tip advances.
type BlockMsg struct {
	Height    uint64
	Timestamp time.Time
}

// PeersMsg carries the addresses of the node's connected peers.
type PeersMsg struct {
	Peers []string
}

// CPUMinerMsg is sent with every CPU miner snapshot.
type CPUMinerMsg struct {
	Status minerdomain.CPUMinerStatus
}

// GPUDevicesMsg carries the current GPU device list.
type GPUDevicesMsg struct {
	Devices []hwdomain.PublicDeviceProperties
}

// SyncProgressMsg reports initial sync progress.
type SyncProgressMsg struct {
	Phase      string
	Percentage float64
}

// WorkerStatusMsg is sent when a worker's health verdict changes.
type WorkerStatusMsg struct {
	Name   string
	Health string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
