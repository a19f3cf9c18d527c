// Package sysinfo samples host CPU load with gopsutil.
package sysinfo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/mmrrnn/universe/business/miner/app"
	"github.com/mmrrnn/universe/internal/apperror"
)

// SettleInterval is how long usage is measured over.
const SettleInterval = 200 * time.Millisecond

const unknownBrand = "Unknown"

// Sampler implements app.CPUSampler.
type Sampler struct {
	interval time.Duration

	brandOnce sync.Once
	brand     string
}

var _ app.CPUSampler = (*Sampler)(nil)

func NewSampler() *Sampler {
	return &Sampler{interval: SettleInterval}
}

// Usage returns global CPU usage in percent.
func (s *Sampler) Usage(ctx context.Context) (uint32, error) {
	pct, err := cpu.PercentWithContext(ctx, s.interval, false)
	if err != nil {
		return 0, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext("cpu usage"))
	}
	if len(pct) == 0 {
		return 0, nil
	}
	return uint32(pct[0]), nil
}

// Brand returns the model name of the first CPU.
func (s *Sampler) Brand(ctx context.Context) string {
	s.brandOnce.Do(func() {
		s.brand = unknownBrand
		infos, err := cpu.InfoWithContext(ctx)
		if err != nil || len(infos) == 0 {
			return
		}
		if name := strings.TrimSpace(infos[0].ModelName); name != "" {
			s.brand = name
		}
	})
	return s.brand
}
