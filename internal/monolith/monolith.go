// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"
	"sync"

	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/health"
	"github.com/mmrrnn/universe/internal/logger"
)

// ShutdownFunc releases a module resource.
type ShutdownFunc func(ctx context.Context) error

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Health() *health.Server
	Services() di.ServiceRegistry

	// OnShutdown registers fn to run on Close, in reverse registration order.
	OnShutdown(name string, fn ShutdownFunc)

	// Go runs fn in a tracked goroutine. Close waits for it to return.
	Go(fn func())
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Application is the Monolith as driven by main.
type Application interface {
	Monolith
	RegisterModules(modules ...Module) error
	StartModules(ctx context.Context, modules ...Module) error
	Close(ctx context.Context) error
}

var _ Application = (*app)(nil)

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	health    *health.Server
	container di.Container

	mu    sync.Mutex
	hooks []shutdownHook
	wg    sync.WaitGroup
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface, healthServer *health.Server) *app {
	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("health", healthServer)

	return &app{
		config:    cfg,
		logger:    log,
		health:    healthServer,
		container: container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Health() *health.Server {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

func (a *app) OnShutdown(name string, fn ShutdownFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

func (a *app) Go(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close runs the shutdown hooks newest first, then waits for tracked
// goroutines or ctx.
func (a *app) Close(ctx context.Context) error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			a.logger.Error(ctx, "shutdown hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	return errors.Join(errs...)
}
