package readers

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/sensors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

type stubRunner struct {
	out  string
	err  error
	args []string
}

func (r *stubRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	r.args = args
	return []byte(r.out), r.err
}

func TestNvidia_Read(t *testing.T) {
	runner := &stubRunner{out: "87, 71\n"}
	reader := NvidiaFactory(runner)(domain.DeviceInfo{Index: 3, VendorIndex: 1})

	params, err := reader.Read(context.Background(), &domain.DeviceParameters{MaxTemperature: 80})
	require.NoError(t, err)
	assert.Equal(t, float32(87), params.UsagePercentage)
	assert.Equal(t, float32(71), params.CurrentTemperature)
	assert.Equal(t, float32(80), params.MaxTemperature)
	assert.Contains(t, runner.args, "--id=1")
}

func TestNvidia_Errors(t *testing.T) {
	tests := []struct {
		name   string
		runner *stubRunner
	}{
		{"command failed", &stubRunner{err: errors.New("exit status 9")}},
		{"unexpected output", &stubRunner{out: "No devices were found"}},
		{"not a number", &stubRunner{out: "[N/A], 40"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NvidiaFactory(tt.runner)(domain.DeviceInfo{}).Read(context.Background(), nil)
			assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
		})
	}
}

func writeCard(t *testing.T, fs afero.Fs, card, pciVendor string, files map[string]string) {
	t.Helper()
	dir := "/sys/class/drm/" + card
	require.NoError(t, afero.WriteFile(fs, dir+"/device/vendor", []byte(pciVendor+"\n"), 0o444))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, dir+"/"+name, []byte(content), 0o444))
	}
}

func TestAmdGPU_Read(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCard(t, fs, "card0", "0x1002", map[string]string{
		"device/gpu_busy_percent":         "42\n",
		"device/hwmon/hwmon3/temp1_input": "65000\n",
	})

	reader := AmdGPUFactory(fs, "/sys/class/drm")(domain.DeviceInfo{})
	params, err := reader.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(42), params.UsagePercentage)
	assert.Equal(t, float32(65), params.CurrentTemperature)
	assert.Equal(t, float32(65), params.MaxTemperature)
}

func TestAmdGPU_SkipsOtherVendorsCards(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCard(t, fs, "card0", "0x8086", map[string]string{
		"device/gpu_busy_percent": "99\n",
	})
	writeCard(t, fs, "card1", "0x1002", map[string]string{
		"device/gpu_busy_percent":         "10\n",
		"device/hwmon/hwmon0/temp1_input": "50000\n",
	})
	writeCard(t, fs, "card2", "0x1002", map[string]string{
		"device/gpu_busy_percent":         "20\n",
		"device/hwmon/hwmon1/temp1_input": "55000\n",
	})
	require.NoError(t, afero.WriteFile(fs, "/sys/class/drm/card1-DP-1/status", []byte("connected\n"), 0o444))

	factory := AmdGPUFactory(fs, "/sys/class/drm")

	first, err := factory(domain.DeviceInfo{Index: 1, VendorIndex: 0}).Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(10), first.UsagePercentage)

	second, err := factory(domain.DeviceInfo{Index: 2, VendorIndex: 1}).Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(20), second.UsagePercentage)

	_, err = factory(domain.DeviceInfo{VendorIndex: 2}).Read(context.Background(), nil)
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}

func TestAmdGPU_MissingSysfs(t *testing.T) {
	reader := AmdGPUFactory(afero.NewMemMapFs(), "/sys/class/drm")(domain.DeviceInfo{VendorIndex: 2})

	_, err := reader.Read(context.Background(), nil)
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}

func TestIntelGPU_Read(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCard(t, fs, "card0", "0x1002", nil)
	writeCard(t, fs, "card1", "0x8086", map[string]string{
		"gt_act_freq_mhz":                 "600\n",
		"gt_max_freq_mhz":                 "1200\n",
		"device/hwmon/hwmon2/temp1_input": "48000\n",
	})

	reader := IntelGPUFactory(fs, "/sys/class/drm")(domain.DeviceInfo{Index: 1})
	require.True(t, reader.IsImplemented())

	params, err := reader.Read(context.Background(), &domain.DeviceParameters{MaxTemperature: 70})
	require.NoError(t, err)
	assert.Equal(t, float32(50), params.UsagePercentage)
	assert.Equal(t, float32(48), params.CurrentTemperature)
	assert.Equal(t, float32(70), params.MaxTemperature)
}

func TestIntelGPU_IntegratedWithoutSensor(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCard(t, fs, "card0", "0x8086", map[string]string{
		"gt_act_freq_mhz": "1500\n",
		"gt_max_freq_mhz": "1300\n",
	})

	params, err := IntelGPUFactory(fs, "/sys/class/drm")(domain.DeviceInfo{}).Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(100), params.UsagePercentage)
	assert.Equal(t, float32(0), params.CurrentTemperature)
}

func TestAppleGPU_Read(t *testing.T) {
	runner := &stubRunner{out: `+-o AGXAcceleratorG13X  <class AGXAcceleratorG13X>
    "PerformanceStatistics" = {"In use system memory"=418611200,"Device Utilization %"=37,"Renderer Utilization %"=35}
`}
	reader := AppleGPUFactory(runner)(domain.DeviceInfo{})

	params, err := reader.Read(context.Background(), &domain.DeviceParameters{MaxTemperature: 40})
	require.NoError(t, err)
	assert.Equal(t, float32(37), params.UsagePercentage)
	assert.Equal(t, float32(40), params.MaxTemperature)
	assert.Contains(t, runner.args, "IOAccelerator")

	_, err = AppleGPUFactory(runner)(domain.DeviceInfo{VendorIndex: 1}).Read(context.Background(), nil)
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}

func TestCPU_Read(t *testing.T) {
	reader := &CPU{
		percent: func(context.Context) ([]float64, error) { return []float64{12.5}, nil },
		temperatures: func(context.Context) ([]sensors.TemperatureStat, error) {
			return []sensors.TemperatureStat{
				{SensorKey: "coretemp_package_id_0", Temperature: 58},
				{SensorKey: "coretemp_core_1", Temperature: 61},
				{SensorKey: "nvme_composite", Temperature: 75},
			}, errors.New("partial read")
		},
	}

	params, err := reader.Read(context.Background(), &domain.DeviceParameters{MaxTemperature: 90})
	require.NoError(t, err)
	assert.Equal(t, float32(12.5), params.UsagePercentage)
	assert.Equal(t, float32(61), params.CurrentTemperature)
	assert.Equal(t, float32(90), params.MaxTemperature)
}

func TestCPU_NoSensors(t *testing.T) {
	reader := &CPU{
		percent: func(context.Context) ([]float64, error) { return []float64{1}, nil },
		temperatures: func(context.Context) ([]sensors.TemperatureStat, error) {
			return nil, errors.New("not supported")
		},
	}

	_, err := reader.Read(context.Background(), nil)
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}

func TestUnimplemented(t *testing.T) {
	reader := UnimplementedFactory(domain.VendorApple)(domain.DeviceInfo{})

	assert.False(t, reader.IsImplemented())
	_, err := reader.Read(context.Background(), nil)
	assert.Equal(t, apperror.CodeReaderNotImplemented, apperror.GetCode(err))
}
