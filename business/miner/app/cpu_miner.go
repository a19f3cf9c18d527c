package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmrrnn/universe/business/miner/domain"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	supervisordomain "github.com/mmrrnn/universe/business/supervisor/domain"
	"github.com/mmrrnn/universe/internal/apm"
	"github.com/mmrrnn/universe/internal/logger"
)

const tracerName = "github.com/mmrrnn/universe/business/miner/app"

// CPUMinerConfig holds the status computation settings.
type CPUMinerConfig struct {
	BlocksPerDay  int64
	StatusTimeout time.Duration
}

// DefaultCPUMinerConfig returns sensible defaults.
func DefaultCPUMinerConfig() CPUMinerConfig {
	return CPUMinerConfig{
		BlocksPerDay:  domain.BlocksPerDay,
		StatusTimeout: 5 * time.Second,
	}
}

// CPUMiner runs the CPU mining worker under a supervisor and reports its status.
type CPUMiner struct {
	config     CPUMinerConfig
	supervisor *supervisorapp.Supervisor
	adapter    supervisorapp.ProcessAdapter
	newClient  func() SummaryClient
	sampler    CPUSampler
	logger     logger.LoggerInterface
	tracer     apm.Tracer

	// client is set while the worker runs.
	clientMu sync.RWMutex
	client   SummaryClient
}

// NewCPUMiner creates a miner. newClient builds the API client for a freshly
// started worker.
func NewCPUMiner(
	cfg CPUMinerConfig,
	supervisor *supervisorapp.Supervisor,
	adapter supervisorapp.ProcessAdapter,
	newClient func() SummaryClient,
	sampler CPUSampler,
	log logger.LoggerInterface,
) *CPUMiner {
	if cfg.BlocksPerDay <= 0 {
		cfg.BlocksPerDay = domain.BlocksPerDay
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = 5 * time.Second
	}
	return &CPUMiner{
		config:     cfg,
		supervisor: supervisor,
		adapter:    adapter,
		newClient:  newClient,
		sampler:    sampler,
		logger:     log,
		tracer:     apm.NewTracer(tracerName),
	}
}

// Start spawns the miner. Starting a running miner is a logged no-op.
func (m *CPUMiner) Start(appCtx context.Context) error {
	if err := m.supervisor.Start(appCtx, m.adapter); err != nil {
		return err
	}

	m.clientMu.Lock()
	if m.client == nil {
		m.client = m.newClient()
	}
	m.clientMu.Unlock()
	return nil
}

// Stop stops the miner and forgets its API client.
func (m *CPUMiner) Stop(ctx context.Context) error {
	m.clientMu.Lock()
	m.client = nil
	m.clientMu.Unlock()

	return m.supervisor.Stop(ctx)
}

// IsRunning reports whether the worker is alive.
func (m *CPUMiner) IsRunning() bool {
	return m.supervisor.IsRunning()
}

// CheckHealth delegates to the worker's status monitor.
func (m *CPUMiner) CheckHealth(ctx context.Context) supervisordomain.HealthStatus {
	return m.supervisor.CheckHealth(ctx)
}

// Status returns the current CPU mining snapshot. Without a running worker
// it returns the idle snapshot.
func (m *CPUMiner) Status(ctx context.Context, networkHashrate, blockReward uint64) (domain.CPUMinerStatus, error) {
	ctx, span := m.tracer.Start(ctx, "miner.status")
	defer span.End()

	brand := m.sampler.Brand(ctx)
	usage, err := m.sampler.Usage(ctx)
	if err != nil {
		m.logger.Warn(ctx, "cpu usage sample failed", "error", err)
	}

	m.clientMu.RLock()
	client := m.client
	m.clientMu.RUnlock()

	if client == nil {
		span.SetAttributes(attribute.Bool("idle", true))
		span.MarkOK()
		return domain.IdleStatus(usage, brand), nil
	}

	summaryCtx, cancel := context.WithTimeout(ctx, m.config.StatusTimeout)
	defer cancel()

	summary, err := client.Summary(summaryCtx)
	if err != nil {
		span.NoticeError(err)
		return domain.CPUMinerStatus{}, err
	}

	status := domain.StatusFromSummary(summary, usage, brand, networkHashrate, blockReward, m.config.BlocksPerDay)
	span.SetAttributes(
		attribute.Bool("is_mining", status.IsMining),
		attribute.Float64("hash_rate", status.HashRate),
	)
	span.MarkOK()
	return status, nil
}
