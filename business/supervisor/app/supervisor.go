package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmrrnn/universe/business/supervisor/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

const meterName = "github.com/mmrrnn/universe/business/supervisor/app"

// Exit reasons recorded when the watch loop ends.
const (
	ExitReasonDied     = "died"
	ExitReasonStopped  = "stopped"
	ExitReasonShutdown = "shutdown"
)

// SupervisorConfig holds supervisor timing.
type SupervisorConfig struct {
	Name         string
	PingInterval time.Duration // how often the worker is pinged
	StopTimeout  time.Duration // bound on the worker's own stop sequence
}

// DefaultSupervisorConfig returns the standard 1s ping cadence.
func DefaultSupervisorConfig(name string) SupervisorConfig {
	return SupervisorConfig{
		Name:         name,
		PingInterval: time.Second,
		StopTimeout:  15 * time.Second,
	}
}

type supervisorMetrics struct {
	starts       metric.Int64Counter
	exits        metric.Int64Counter
	healthChecks metric.Int64Counter
}

// Supervisor owns one worker process and the goroutine watching it.
// At most one worker is active per Supervisor.
type Supervisor struct {
	config SupervisorConfig
	logger logger.LoggerInterface

	mu        sync.RWMutex
	adapter   ProcessAdapter
	instance  ProcessInstance
	monitor   StatusMonitor
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	metrics *supervisorMetrics
}

// NewSupervisor creates an idle supervisor.
func NewSupervisor(cfg SupervisorConfig, log logger.LoggerInterface) *Supervisor {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 15 * time.Second
	}

	s := &Supervisor{
		config: cfg,
		logger: log,
	}
	s.initMetrics()
	return s
}

func (s *Supervisor) initMetrics() {
	meter := otel.Meter(meterName)
	s.metrics = &supervisorMetrics{}

	var err error
	if s.metrics.starts, err = meter.Int64Counter(
		"supervisor_starts_total",
		metric.WithDescription("Worker processes spawned"),
		metric.WithUnit("{start}"),
	); err != nil {
		s.logger.Warn(context.Background(), "metric init failed", "metric", "supervisor_starts_total", "error", err)
	}
	if s.metrics.exits, err = meter.Int64Counter(
		"supervisor_exits_total",
		metric.WithDescription("Watch loop exits by reason"),
		metric.WithUnit("{exit}"),
	); err != nil {
		s.logger.Warn(context.Background(), "metric init failed", "metric", "supervisor_exits_total", "error", err)
	}
	if s.metrics.healthChecks, err = meter.Int64Counter(
		"supervisor_health_checks_total",
		metric.WithDescription("Health checks by resulting status"),
		metric.WithUnit("{check}"),
	); err != nil {
		s.logger.Warn(context.Background(), "metric init failed", "metric", "supervisor_health_checks_total", "error", err)
	}
}

// Start spawns the worker through adapter and begins watching it. appCtx is
// the process-wide shutdown signal. Starting an already started supervisor
// logs a warning and returns nil.
func (s *Supervisor) Start(appCtx context.Context, adapter ProcessAdapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		s.logger.Warn(appCtx, "tried to start worker twice", "worker", s.config.Name)
		return nil
	}

	// Remembered even when the spawn fails so Restart can retry.
	s.adapter = adapter

	instance, monitor, err := adapter.Spawn(appCtx)
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.New(apperror.CodeProcessSpawnFailed,
			apperror.WithCause(err),
			apperror.WithContext(adapter.Name()))
	}

	localCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.instance = instance
	s.monitor = monitor
	s.cancel = cancel
	s.done = done
	s.startedAt = time.Now()

	if s.metrics.starts != nil {
		s.metrics.starts.Add(appCtx, 1, metric.WithAttributes(attribute.String("worker", s.config.Name)))
	}
	s.logger.Info(appCtx, "worker started", "worker", s.config.Name, "pid", instance.PID())

	go s.watch(appCtx, localCtx, instance, done)

	return nil
}

// watch is the only goroutine that stops instance. Every exit path stops the worker.
func (s *Supervisor) watch(appCtx, localCtx context.Context, instance ProcessInstance, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if instance.Ping() {
				continue
			}
			s.logger.Warn(context.Background(), "worker is not running", "worker", s.config.Name)
			s.stopWorker(instance, ExitReasonDied)
			return

		case <-localCtx.Done():
			s.stopWorker(instance, ExitReasonStopped)
			return

		case <-appCtx.Done():
			s.stopWorker(instance, ExitReasonShutdown)
			return
		}
	}
}

func (s *Supervisor) stopWorker(instance ProcessInstance, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.StopTimeout)
	defer cancel()

	if s.metrics.exits != nil {
		s.metrics.exits.Add(ctx, 1, metric.WithAttributes(
			attribute.String("worker", s.config.Name),
			attribute.String("reason", reason),
		))
	}

	if err := instance.Stop(ctx); err != nil {
		s.logger.Error(ctx, "worker exited with error",
			"worker", s.config.Name,
			"reason", reason,
			"error", err)
		return
	}
	s.logger.Info(ctx, "worker exited", "worker", s.config.Name, "reason", reason)
}

// Stop triggers the local shutdown and waits for the watch goroutine. Calling
// Stop on a stopped supervisor is a no-op. The lock is not held while
// waiting, so status reads stay responsive during the stop sequence.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.RLock()
	cancel, done := s.cancel, s.done
	s.mu.RUnlock()

	if done == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(ctx.Err()),
			apperror.WithContext("waiting for "+s.config.Name+" to stop"))
	}

	s.mu.Lock()
	if s.done == done {
		s.instance = nil
		s.monitor = nil
		s.cancel = nil
		s.done = nil
	}
	s.mu.Unlock()

	return nil
}

// Restart stops the current worker and spawns a new one with the last adapter.
func (s *Supervisor) Restart(ctx, appCtx context.Context) error {
	s.mu.RLock()
	adapter := s.adapter
	s.mu.RUnlock()

	if adapter == nil {
		return apperror.New(apperror.CodeProcessNotRunning,
			apperror.WithContext(s.config.Name+" was never started"))
	}

	if err := s.Stop(ctx); err != nil {
		return err
	}
	return s.Start(appCtx, adapter)
}

// IsRunning reports whether the watch loop is active.
func (s *Supervisor) IsRunning() bool {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Uptime returns how long the current worker has been up, or 0.
func (s *Supervisor) Uptime() time.Duration {
	if !s.IsRunning() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startedAt)
}

// CheckHealth asks the worker's monitor for a verdict. A supervisor without
// a live worker is Unhealthy.
func (s *Supervisor) CheckHealth(ctx context.Context) domain.HealthStatus {
	s.mu.RLock()
	monitor := s.monitor
	startedAt := s.startedAt
	s.mu.RUnlock()

	status := domain.Unhealthy
	if monitor != nil && s.IsRunning() {
		status = monitor.CheckHealth(ctx, time.Since(startedAt))
	}

	if s.metrics.healthChecks != nil {
		s.metrics.healthChecks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("worker", s.config.Name),
			attribute.String("status", status.String()),
		))
	}
	return status
}

// Wait blocks until the current watch loop exits or ctx is done.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name returns the supervised worker name.
func (s *Supervisor) Name() string {
	return s.config.Name
}
