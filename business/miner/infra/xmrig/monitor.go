package xmrig

import (
	"context"
	"time"

	"github.com/mmrrnn/universe/business/miner/app"
	supervisordomain "github.com/mmrrnn/universe/business/supervisor/domain"
	"github.com/mmrrnn/universe/internal/logger"
)

// warmup is how long a fresh miner may report no hash rate before it
// counts as degraded.
const warmup = time.Minute

// StatusMonitor judges xmrig health from its API summary.
type StatusMonitor struct {
	client app.SummaryClient
	logger logger.LoggerInterface
}

func NewStatusMonitor(client app.SummaryClient, log logger.LoggerInterface) *StatusMonitor {
	return &StatusMonitor{client: client, logger: log}
}

// CheckHealth is Unhealthy when the API does not answer, Warning when a
// warmed-up miner reports no hash rate, and Healthy otherwise.
func (m *StatusMonitor) CheckHealth(ctx context.Context, uptime time.Duration) supervisordomain.HealthStatus {
	summary, err := m.client.Summary(ctx)
	if err != nil {
		m.logger.Warn(ctx, "xmrig health check failed", "error", err)
		return supervisordomain.Unhealthy
	}

	if rate, ok := summary.CurrentHashRate(); (!ok || rate <= 0) && uptime > warmup {
		return supervisordomain.Warning
	}
	return supervisordomain.Healthy
}
