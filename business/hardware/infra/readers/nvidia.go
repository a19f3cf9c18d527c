package readers

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Nvidia reads utilization and temperature from nvidia-smi.
type Nvidia struct {
	runner Runner
	binary string
	index  int
}

var _ app.Reader = (*Nvidia)(nil)

// NvidiaFactory returns a factory binding an nvidia-smi reader to each
// device. nvidia-smi numbers only NVIDIA GPUs, so the vendor index is used.
func NvidiaFactory(runner Runner) app.ReaderFactory {
	return func(device domain.DeviceInfo) app.Reader {
		return &Nvidia{runner: runner, binary: "nvidia-smi", index: device.VendorIndex}
	}
}

func (n *Nvidia) IsImplemented() bool { return true }

func (n *Nvidia) Read(ctx context.Context, previous *domain.DeviceParameters) (domain.DeviceParameters, error) {
	out, err := n.runner.Run(ctx, n.binary,
		"--query-gpu=utilization.gpu,temperature.gpu",
		"--format=csv,noheader,nounits",
		"--id="+strconv.Itoa(n.index))
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("nvidia-smi"))
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) != 2 {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithContext("unexpected nvidia-smi output: "+string(out)))
	}

	usage, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 32)
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed, apperror.WithCause(err))
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32)
	if err != nil {
		return domain.DeviceParameters{}, apperror.New(apperror.CodeHardwareProbeFailed, apperror.WithCause(err))
	}

	return domain.DeviceParameters{
		UsagePercentage:    float32(usage),
		CurrentTemperature: float32(temp),
		MaxTemperature:     maxTemperature(previous, float32(temp)),
	}, nil
}
