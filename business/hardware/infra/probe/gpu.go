// Package probe discovers GPU and CPU devices.
package probe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

const (
	gpuStatusDir  = "gpuminer"
	gpuStatusFile = "gpu_status.json"
)

type gpuStatusFileContent struct {
	GPUDevices []gpuStatusFileEntry `json:"gpu_devices"`
}

type gpuStatusFileEntry struct {
	IsAvailable bool   `json:"is_available"`
	DeviceName  string `json:"device_name"`
}

// GPUStatusFile reads the device list written by the GPU miner's detection
// run at <config dir>/<app id>/gpuminer/gpu_status.json.
type GPUStatusFile struct {
	fs        afero.Fs
	configDir string
	appID     string
	logger    logger.LoggerInterface

	userConfigDir func() (string, error)
}

var _ app.Probe = (*GPUStatusFile)(nil)

// NewGPUStatusFile creates the probe. An empty configDir resolves to the
// user config directory on every call.
func NewGPUStatusFile(fs afero.Fs, configDir, appID string, log logger.LoggerInterface) *GPUStatusFile {
	return &GPUStatusFile{
		fs:            fs,
		configDir:     configDir,
		appID:         appID,
		logger:        log,
		userConfigDir: os.UserConfigDir,
	}
}

// Path returns the status file location.
func (p *GPUStatusFile) Path() (string, error) {
	dir := p.configDir
	if dir == "" {
		var err error
		if dir, err = p.userConfigDir(); err != nil {
			return "", apperror.New(apperror.CodeConfigDirUnavailable, apperror.WithCause(err))
		}
	}
	return filepath.Join(dir, p.appID, gpuStatusDir, gpuStatusFile), nil
}

// Devices returns the GPUs listed in the status file. A missing file means no
// GPUs.
func (p *GPUStatusFile) Devices(ctx context.Context) ([]domain.DeviceInfo, error) {
	path, err := p.Path()
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn(ctx, "gpu status file not found", "path", path)
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeHardwareProbeFailed, path)
	}

	var content gpuStatusFileContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}

	devices := make([]domain.DeviceInfo, 0, len(content.GPUDevices))
	for i, entry := range content.GPUDevices {
		p.logger.Debug(ctx, "gpu device found", "name", entry.DeviceName, "available", entry.IsAvailable)
		devices = append(devices, domain.DeviceInfo{
			Name:        entry.DeviceName,
			IsAvailable: entry.IsAvailable,
			Index:       i,
		})
	}
	return devices, nil
}
