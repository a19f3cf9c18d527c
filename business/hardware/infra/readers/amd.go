package readers

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

// AmdGPU reads the amdgpu driver's sysfs attributes.
type AmdGPU struct {
	fs   afero.Fs
	card drmCard
}

var _ app.Reader = (*AmdGPU)(nil)

// AmdGPUFactory returns a factory binding a sysfs reader to the n-th AMD
// card, n being the device's vendor index. root is usually /sys/class/drm.
func AmdGPUFactory(fs afero.Fs, root string) app.ReaderFactory {
	return func(device domain.DeviceInfo) app.Reader {
		return &AmdGPU{
			fs:   fs,
			card: drmCard{fs: fs, root: root, pciVendor: pciVendorAMD, ordinal: device.VendorIndex},
		}
	}
}

func (a *AmdGPU) IsImplemented() bool { return true }

func (a *AmdGPU) Read(_ context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error) {
	dir, err := a.card.dir()
	if err != nil {
		return domain.DeviceParameters{}, err
	}
	device := filepath.Join(dir, "device")

	usage, err := readNumber(a.fs, filepath.Join(device, "gpu_busy_percent"))
	if err != nil {
		return domain.DeviceParameters{}, err
	}

	temp, ok, err := hwmonTemperature(a.fs, device)
	if err != nil {
		return domain.DeviceParameters{}, err
	}
	if !ok {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithContext("no hwmon temperature for "+device))
	}

	return domain.DeviceParameters{
		UsagePercentage:    float32(usage),
		CurrentTemperature: temp,
		MaxTemperature:     maxTemperature(previous, temp),
	}, nil
}
