package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mmrrnn/universe/business/supervisor/domain"
	"github.com/mmrrnn/universe/internal/health"
	"github.com/mmrrnn/universe/internal/logger"
)

// Restartable is the part of a supervisor the watchdog drives.
type Restartable interface {
	Name() string
	IsRunning() bool
	CheckHealth(ctx context.Context) domain.HealthStatus
	Restart(ctx, appCtx context.Context) error
}

var _ Restartable = (*Supervisor)(nil)

// Watchdog restarts a worker that died or stayed Unhealthy for too long.
type Watchdog struct {
	target      Restartable
	logger      logger.LoggerInterface
	limit       int
	stopTimeout time.Duration

	failures int
	restarts atomic.Int64
	last     atomic.Int32
}

// NewWatchdog creates a watchdog that restarts after limit consecutive
// Unhealthy checks.
func NewWatchdog(target Restartable, limit int, log logger.LoggerInterface) *Watchdog {
	if limit <= 0 {
		limit = 3
	}
	w := &Watchdog{
		target:      target,
		logger:      log,
		limit:       limit,
		stopTimeout: 30 * time.Second,
	}
	w.last.Store(int32(domain.Unhealthy))
	return w
}

// Run checks the target every interval until appCtx is done.
func (w *Watchdog) Run(appCtx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-appCtx.Done():
			return
		case <-ticker.C:
			w.Tick(appCtx)
		}
	}
}

// Tick performs one check and restarts the target if needed. It reports
// whether a restart was attempted.
func (w *Watchdog) Tick(appCtx context.Context) bool {
	if appCtx.Err() != nil {
		return false
	}

	if !w.target.IsRunning() {
		w.last.Store(int32(domain.Unhealthy))
		w.logger.Warn(appCtx, "worker not running, restarting", "worker", w.target.Name())
		w.restart(appCtx)
		return true
	}

	checkCtx, cancel := context.WithTimeout(appCtx, w.stopTimeout)
	status := w.target.CheckHealth(checkCtx)
	cancel()
	w.last.Store(int32(status))

	if status != domain.Unhealthy {
		w.failures = 0
		return false
	}

	w.failures++
	w.logger.Warn(appCtx, "worker unhealthy",
		"worker", w.target.Name(),
		"consecutive", w.failures,
		"limit", w.limit)

	if w.failures < w.limit {
		return false
	}

	w.restart(appCtx)
	return true
}

func (w *Watchdog) restart(appCtx context.Context) {
	w.failures = 0
	restarts := w.restarts.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), w.stopTimeout)
	defer cancel()

	if err := w.target.Restart(ctx, appCtx); err != nil {
		w.logger.Error(appCtx, "worker restart failed", "worker", w.target.Name(), "error", err)
		return
	}
	w.logger.Info(appCtx, "worker restarted", "worker", w.target.Name(), "restarts", restarts)
}

// Restarts returns how many restarts the watchdog attempted.
func (w *Watchdog) Restarts() int {
	return int(w.restarts.Load())
}

// LastStatus returns the verdict of the most recent check.
func (w *Watchdog) LastStatus() domain.HealthStatus {
	return domain.HealthStatus(w.last.Load())
}

// HealthCheck reports the last verdict on the health endpoint without
// querying the worker again.
func (w *Watchdog) HealthCheck() health.CheckFunc {
	return func(context.Context) health.Check {
		msg := fmt.Sprintf("%s: %s, %d restarts", w.target.Name(), w.LastStatus(), w.Restarts())
		switch w.LastStatus() {
		case domain.Healthy:
			return health.Check{Level: health.LevelHealthy, Message: msg}
		case domain.Warning:
			return health.Check{Level: health.LevelWarning, Message: msg}
		default:
			return health.Check{Level: health.LevelUnhealthy, Message: msg}
		}
	}
}
