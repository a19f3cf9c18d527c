package readers

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

// Sensor keys reported for CPU packages by coretemp, k10temp and similar
// drivers.
var cpuSensorKeys = []string{"coretemp", "k10temp", "zenpower", "package", "tctl", "cpu"}

// CPU reads load and package temperature through gopsutil.
type CPU struct {
	percent      func(ctx context.Context) ([]float64, error)
	temperatures func(ctx context.Context) ([]sensors.TemperatureStat, error)
}

var _ app.Reader = (*CPU)(nil)

// CPUFactory returns a factory for gopsutil-backed CPU readers.
func CPUFactory() app.ReaderFactory {
	return func(domain.DeviceInfo) app.Reader {
		return &CPU{
			percent: func(ctx context.Context) ([]float64, error) {
				return cpu.PercentWithContext(ctx, 0, false)
			},
			temperatures: sensors.TemperaturesWithContext,
		}
	}
}

func (c *CPU) IsImplemented() bool { return true }

func (c *CPU) Read(ctx context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error) {
	pct, err := c.percent(ctx)
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("cpu usage"))
	}
	var usage float32
	if len(pct) > 0 {
		usage = float32(pct[0])
	}

	// gopsutil returns partial results together with a warnings error.
	stats, err := c.temperatures(ctx)
	if len(stats) == 0 && err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("cpu temperature"))
	}

	var temp float32
	for _, s := range stats {
		key := strings.ToLower(s.SensorKey)
		for _, k := range cpuSensorKeys {
			if strings.Contains(key, k) && float32(s.Temperature) > temp {
				temp = float32(s.Temperature)
			}
		}
	}

	return domain.DeviceParameters{
		UsagePercentage:    usage,
		CurrentTemperature: temp,
		MaxTemperature:     maxTemperature(previous, temp),
	}, nil
}
