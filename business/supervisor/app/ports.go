// Package app contains the process supervisor and the ports a worker adapter implements.
package app

import (
	"context"
	"time"

	"github.com/mmrrnn/universe/business/supervisor/domain"
)

// ProcessInstance is a running worker as seen by its supervisor.
type ProcessInstance interface {
	// Ping reports whether the worker is still alive. It must not block.
	Ping() bool

	// Stop terminates the worker. Safe to call on an already exited worker.
	Stop(ctx context.Context) error

	// PID returns the OS process id, or 0 when there is no local process.
	PID() int
}

// StatusMonitor judges worker health given how long it has been up.
type StatusMonitor interface {
	CheckHealth(ctx context.Context, uptime time.Duration) domain.HealthStatus
}

// ProcessAdapter knows how to launch one kind of worker.
type ProcessAdapter interface {
	// Name identifies the worker in logs and metrics.
	Name() string

	// Spawn launches the worker and returns its handle and health monitor.
	Spawn(ctx context.Context) (ProcessInstance, StatusMonitor, error)
}
