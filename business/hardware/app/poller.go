package app

import (
	"context"
	"time"

	"github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	"github.com/mmrrnn/universe/internal/logger"
)

// Poller emits the GPU device list and GPU mining availability on a fixed
// interval.
type Poller struct {
	monitor *Monitor
	emitter EventEmitter
	logger  logger.LoggerInterface
}

func NewPoller(monitor *Monitor, emitter EventEmitter, log logger.LoggerInterface) *Poller {
	return &Poller{monitor: monitor, emitter: emitter, logger: log}
}

// Run emits immediately, then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	p.Poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll emits one GPU snapshot. No GPU miner is supervised, so the mining
// update only reports whether any GPU could mine.
func (p *Poller) Poll(ctx context.Context) {
	devices := p.monitor.GetGpuPublicProperties(ctx)
	p.emitter.EmitGpuDevicesUpdate(ctx, devices)
	p.emitter.EmitGPUMiningUpdate(ctx, minerdomain.GPUMinerStatus{IsAvailable: anyAvailable(devices)})
}

func anyAvailable(devices []domain.PublicDeviceProperties) bool {
	for _, d := range devices {
		if d.Status.IsAvailable {
			return true
		}
	}
	return false
}
