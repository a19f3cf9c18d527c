package app

import (
	"context"

	"github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
)

// Reader fetches live telemetry for one device. previous is the last
// successful reading, or nil.
type Reader interface {
	IsImplemented() bool
	Read(ctx context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error)
}

// ReaderFactory builds a reader bound to one discovered device.
type ReaderFactory func(device domain.DeviceInfo) Reader

// Probe discovers devices of one kind.
type Probe interface {
	Devices(ctx context.Context) ([]domain.DeviceInfo, error)
}

// EventEmitter receives GPU device snapshots and the GPU mining
// availability derived from them.
type EventEmitter interface {
	EmitGpuDevicesUpdate(ctx context.Context, devices []domain.PublicDeviceProperties)
	EmitGPUMiningUpdate(ctx context.Context, status minerdomain.GPUMinerStatus)
}
