package readers

import (
	"context"
	"regexp"
	"strconv"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

var deviceUtilization = regexp.MustCompile(`"Device Utilization %"\s*=\s*(\d+)`)

// AppleGPU reads GPU utilization from the IOAccelerator performance
// statistics that ioreg prints. macOS exposes GPU temperature only to root
// via powermetrics, so the temperature stays 0.
type AppleGPU struct {
	runner Runner
	index  int
}

var _ app.Reader = (*AppleGPU)(nil)

// AppleGPUFactory returns a factory binding an ioreg reader to the n-th
// accelerator, n being the device's vendor index.
func AppleGPUFactory(runner Runner) app.ReaderFactory {
	return func(device domain.DeviceInfo) app.Reader {
		return &AppleGPU{runner: runner, index: device.VendorIndex}
	}
}

func (a *AppleGPU) IsImplemented() bool { return true }

func (a *AppleGPU) Read(ctx context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error) {
	out, err := a.runner.Run(ctx, "ioreg", "-r", "-d", "1", "-w", "0", "-c", "IOAccelerator")
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("ioreg"))
	}

	matches := deviceUtilization.FindAllSubmatch(out, -1)
	if a.index >= len(matches) {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithContext("no utilization for accelerator "+strconv.Itoa(a.index)))
	}
	usage, err := strconv.ParseFloat(string(matches[a.index][1]), 32)
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed, apperror.WithCause(err))
	}

	return domain.DeviceParameters{
		UsagePercentage: float32(usage),
		MaxTemperature:  maxTemperature(previous, 0),
	}, nil
}
