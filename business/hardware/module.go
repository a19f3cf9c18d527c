// Package hardware implements the device discovery and telemetry context.
package hardware

import (
	"context"

	"github.com/spf13/afero"

	eventsDI "github.com/mmrrnn/universe/business/events/di"
	"github.com/mmrrnn/universe/business/hardware/app"
	hardwareDI "github.com/mmrrnn/universe/business/hardware/di"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/business/hardware/infra/probe"
	"github.com/mmrrnn/universe/business/hardware/infra/readers"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/monolith"
	"github.com/mmrrnn/universe/pkg/ui"
)

// Module implements the hardware bounded context.
type Module struct{}

// RegisterServices registers all hardware services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, hardwareDI.GPUReaders, func(sr di.ServiceRegistry) *app.Registry {
		cfg := sr.Get("config").(*config.Config)
		fs := afero.NewOsFs()

		return app.NewRegistry(readers.UnimplementedFactory(domain.VendorUnknown)).
			Register(domain.VendorNvidia, readers.NvidiaFactory(readers.ExecRunner{})).
			Register(domain.VendorAmd, readers.AmdGPUFactory(fs, cfg.Hardware.SysfsRoot)).
			Register(domain.VendorIntel, readers.IntelGPUFactory(fs, cfg.Hardware.SysfsRoot)).
			Register(domain.VendorApple, readers.AppleGPUFactory(readers.ExecRunner{}))
	})

	di.RegisterToken(c, hardwareDI.CPUReaders, func(di.ServiceRegistry) *app.Registry {
		return app.NewRegistry(readers.UnimplementedFactory(domain.VendorUnknown)).
			Register(domain.VendorAmd, readers.CPUFactory()).
			Register(domain.VendorIntel, readers.CPUFactory()).
			Register(domain.VendorApple, readers.CPUFactory())
	})

	// Register Monitor (public - exposed to other modules)
	di.RegisterToken(c, hardwareDI.Monitor, func(sr di.ServiceRegistry) *app.Monitor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewMonitor(
			probe.NewGPUStatusFile(afero.NewOsFs(), cfg.Hardware.ConfigDir, cfg.App.ID, log),
			probe.NewCPUs(),
			hardwareDI.GetGPUReaders(sr),
			hardwareDI.GetCPUReaders(sr),
			log,
		)
	})

	return nil
}

// Startup discovers devices and starts the GPU poller.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	monitor := hardwareDI.GetMonitor(mono.Services())

	if err := monitor.Initialize(ctx); err != nil {
		if cfg.App.TUIMode {
			ui.Send(ui.StartupMsg{Step: "hardware", Status: "failed", Message: err.Error()})
		}
		return err
	}
	if cfg.App.TUIMode {
		ui.Send(ui.StartupMsg{Step: "hardware", Status: "done"})
	}

	poller := app.NewPoller(monitor, eventsDI.GetEmitter(mono.Services()), log)
	mono.Go(func() { poller.Run(ctx, cfg.Hardware.PollInterval) })

	log.Info(ctx, "hardware module started")
	return nil
}
