package readers

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
)

// IntelGPU reads the i915/xe driver's sysfs attributes. The driver has no
// busy counter in sysfs, so usage is the actual clock as a share of the
// maximum clock. Integrated parts have no hwmon sensor and report 0 degrees.
type IntelGPU struct {
	fs   afero.Fs
	card drmCard
}

var _ app.Reader = (*IntelGPU)(nil)

// IntelGPUFactory returns a factory binding a sysfs reader to the n-th Intel
// card, n being the device's vendor index.
func IntelGPUFactory(fs afero.Fs, root string) app.ReaderFactory {
	return func(device domain.DeviceInfo) app.Reader {
		return &IntelGPU{
			fs:   fs,
			card: drmCard{fs: fs, root: root, pciVendor: pciVendorIntel, ordinal: device.VendorIndex},
		}
	}
}

func (i *IntelGPU) IsImplemented() bool { return true }

func (i *IntelGPU) Read(_ context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error) {
	dir, err := i.card.dir()
	if err != nil {
		return domain.DeviceParameters{}, err
	}

	actual, err := readNumber(i.fs, filepath.Join(dir, "gt_act_freq_mhz"))
	if err != nil {
		return domain.DeviceParameters{}, err
	}
	peak, err := readNumber(i.fs, filepath.Join(dir, "gt_max_freq_mhz"))
	if err != nil {
		return domain.DeviceParameters{}, err
	}
	var usage float32
	if peak > 0 {
		usage = float32(min(actual/peak, 1) * 100)
	}

	temp, _, err := hwmonTemperature(i.fs, filepath.Join(dir, "device"))
	if err != nil {
		return domain.DeviceParameters{}, err
	}

	return domain.DeviceParameters{
		UsagePercentage:    usage,
		CurrentTemperature: temp,
		MaxTemperature:     maxTemperature(previous, temp),
	}, nil
}
