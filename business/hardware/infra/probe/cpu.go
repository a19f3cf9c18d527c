package probe

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

// CPUs lists physical CPU packages through gopsutil.
type CPUs struct {
	info func(ctx context.Context) ([]cpu.InfoStat, error)
}

var _ app.Probe = (*CPUs)(nil)

func NewCPUs() *CPUs {
	return &CPUs{info: cpu.InfoWithContext}
}

// Devices returns one entry per physical id. The vendor hint combines the
// vendor id and model name.
func (p *CPUs) Devices(ctx context.Context) ([]domain.DeviceInfo, error) {
	infos, err := p.info(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("cpu info"))
	}

	seen := make(map[string]bool, len(infos))
	devices := make([]domain.DeviceInfo, 0, 1)
	for _, info := range infos {
		if seen[info.PhysicalID] {
			continue
		}
		seen[info.PhysicalID] = true

		name := strings.TrimSpace(info.ModelName)
		devices = append(devices, domain.DeviceInfo{
			Name:        name,
			VendorHint:  info.VendorID + " " + name,
			IsAvailable: true,
			Index:       len(devices),
		})
	}
	return devices, nil
}
