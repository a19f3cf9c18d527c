// Package di contains dependency injection tokens for the hardware context.
package di

import (
	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Monitor = di.NewToken[*app.Monitor]("hardware.Monitor")
)

// Private dependency tokens - internal to hardware module
var (
	GPUReaders = di.NewToken[*app.Registry]("hardware:gpuReaders")
	CPUReaders = di.NewToken[*app.Registry]("hardware:cpuReaders")
)

func GetMonitor(c di.ServiceRegistry) *app.Monitor {
	return di.GetToken(c, Monitor)
}

func GetGPUReaders(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, GPUReaders)
}

func GetCPUReaders(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, CPUReaders)
}
