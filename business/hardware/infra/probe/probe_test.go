package probe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

func TestGPUStatusFile_Absent(t *testing.T) {
	p := NewGPUStatusFile(afero.NewMemMapFs(), "/cfg", "com.tari.universe", logger.NewNop())

	devices, err := p.Devices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestGPUStatusFile_Parses(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join("/cfg", "com.tari.universe", "gpuminer", "gpu_status.json")
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"gpu_devices":[
		{"is_available":true,"device_name":"NVIDIA GeForce RTX 3080"},
		{"is_available":false,"device_name":"gfx1030"}
	]}`), 0o644))

	p := NewGPUStatusFile(fs, "/cfg", "com.tari.universe", logger.NewNop())
	devices, err := p.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", devices[0].Name)
	assert.True(t, devices[0].IsAvailable)
	assert.Equal(t, 1, devices[1].Index)
	assert.False(t, devices[1].IsAvailable)
}

func TestGPUStatusFile_Malformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewGPUStatusFile(fs, "/cfg", "app", logger.NewNop())
	path, err := p.Path()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{`), 0o644))

	_, err = p.Devices(context.Background())
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}

func TestGPUStatusFile_ConfigDirUnavailable(t *testing.T) {
	p := NewGPUStatusFile(afero.NewMemMapFs(), "", "app", logger.NewNop())
	p.userConfigDir = func() (string, error) { return "", errors.New("$HOME is not defined") }

	_, err := p.Devices(context.Background())
	assert.Equal(t, apperror.CodeConfigDirUnavailable, apperror.GetCode(err))
}

func TestCPUs_DedupesByPhysicalID(t *testing.T) {
	p := &CPUs{info: func(context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{
			{PhysicalID: "0", VendorID: "GenuineIntel", ModelName: "Intel(R) Xeon(R) Gold 6338"},
			{PhysicalID: "0", VendorID: "GenuineIntel", ModelName: "Intel(R) Xeon(R) Gold 6338"},
			{PhysicalID: "1", VendorID: "GenuineIntel", ModelName: "Intel(R) Xeon(R) Gold 6338"},
		}, nil
	}}

	devices, err := p.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "GenuineIntel Intel(R) Xeon(R) Gold 6338", devices[0].VendorHint)
	assert.Equal(t, 1, devices[1].Index)
}

func TestCPUs_Error(t *testing.T) {
	p := &CPUs{info: func(context.Context) ([]cpu.InfoStat, error) {
		return nil, errors.New("no /proc")
	}}

	_, err := p.Devices(context.Background())
	assert.Equal(t, apperror.CodeHardwareProbeFailed, apperror.GetCode(err))
}
