// Package domain contains the core domain types for the hardware telemetry context.
package domain

import "strings"

// Vendor identifies a device manufacturer.
type Vendor string

const (
	VendorNvidia  Vendor = "Nvidia"
	VendorAmd     Vendor = "Amd"
	VendorIntel   Vendor = "Intel"
	VendorApple   Vendor = "Apple"
	VendorUnknown Vendor = "Unknown"
)

// VendorFromString classifies a device or vendor name by case-insensitive
// substring. Unrecognised names map to VendorUnknown.
func VendorFromString(s string) Vendor {
	name := strings.ToLower(s)
	switch {
	case strings.Contains(name, "nvidia"):
		return VendorNvidia
	case strings.Contains(name, "amd"), strings.Contains(name, "gfx"):
		return VendorAmd
	case strings.Contains(name, "intel"):
		return VendorIntel
	case strings.Contains(name, "apple"):
		return VendorApple
	default:
		return VendorUnknown
	}
}

// DeviceKind separates GPU and CPU devices.
type DeviceKind string

const (
	DeviceKindGPU DeviceKind = "gpu"
	DeviceKindCPU DeviceKind = "cpu"
)

// DeviceParameters is a live telemetry reading.
type DeviceParameters struct {
	UsagePercentage    float32 `json:"usage_percentage"`
	CurrentTemperature float32 `json:"current_temperature"`
	MaxTemperature     float32 `json:"max_temperature"`
}

// DeviceStatus describes whether a device and its reader are usable.
type DeviceStatus struct {
	IsAvailable         bool `json:"is_available"`
	IsReaderImplemented bool `json:"is_reader_implemented"`
}

// PublicDeviceProperties is the exported view of a device. Parameters is
// nil when the last reading failed.
type PublicDeviceProperties struct {
	Vendor     Vendor            `json:"vendor"`
	Name       string            `json:"name"`
	Status     DeviceStatus      `json:"status"`
	Parameters *DeviceParameters `json:"parameters"`
}

// DeviceInfo is what a probe discovers about one device before a reader is
// attached.
type DeviceInfo struct {
	Name        string
	VendorHint  string
	IsAvailable bool
	// Index is the device position as reported by the probe.
	Index int
	// VendorIndex counts devices of the same vendor in probe order, starting
	// at 0. Vendor tools number their devices this way.
	VendorIndex int
}
