// Package miner implements the CPU mining bounded context.
package miner

import (
	"context"

	eventsDI "github.com/mmrrnn/universe/business/events/di"
	"github.com/mmrrnn/universe/business/miner/app"
	minerDI "github.com/mmrrnn/universe/business/miner/di"
	"github.com/mmrrnn/universe/business/miner/domain"
	"github.com/mmrrnn/universe/business/miner/infra/sysinfo"
	"github.com/mmrrnn/universe/business/miner/infra/xmrig"
	nodeDI "github.com/mmrrnn/universe/business/node/di"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/business/supervisor/infra/process"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/monolith"
	"github.com/mmrrnn/universe/pkg/ui"
)

// Module implements the CPU mining bounded context.
type Module struct{}

// RegisterServices registers all miner services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, minerDI.APIClient, func(sr di.ServiceRegistry) *xmrig.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := xmrig.NewClient(xmrig.ClientConfig{
			Port:    cfg.Miner.APIPort,
			Token:   cfg.Miner.APIToken,
			Timeout: cfg.Miner.StatusTimeout,
		}, log)
		if err != nil {
			panic("failed to create xmrig client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, minerDI.Sampler, func(di.ServiceRegistry) app.CPUSampler {
		return sysinfo.NewSampler()
	})

	di.RegisterToken(c, minerDI.Supervisor, func(sr di.ServiceRegistry) *supervisorapp.Supervisor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		supCfg := supervisorapp.DefaultSupervisorConfig("xmrig")
		supCfg.StopTimeout = cfg.Miner.StopGrace + supCfg.StopTimeout
		return supervisorapp.NewSupervisor(supCfg, log)
	})

	// Register CPUMiner (public - exposed to other modules)
	di.RegisterToken(c, minerDI.CPUMiner, func(sr di.ServiceRegistry) *app.CPUMiner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := minerDI.GetAPIClient(sr)

		adapter := xmrig.NewAdapter(xmrig.AdapterConfig{
			BinaryPath: cfg.Miner.BinaryPath,
			PoolURL:    cfg.Miner.PoolURL,
			Wallet:     cfg.Miner.WalletAddress,
			Mode:       domain.ParseMiningMode(cfg.Miner.Mode),
			APIPort:    cfg.Miner.APIPort,
			APIToken:   cfg.Miner.APIToken,
			LogDir:     cfg.Miner.LogDir,
			Process: process.Config{
				StopGrace: cfg.Miner.StopGrace,
				LogOutput: cfg.Events.LogEvents,
			},
		}, xmrig.NewStatusMonitor(client, log), log)

		return app.NewCPUMiner(app.CPUMinerConfig{
			BlocksPerDay:  cfg.Miner.BlocksPerDay,
			StatusTimeout: cfg.Miner.StatusTimeout,
		}, minerDI.GetSupervisor(sr), adapter,
			func() app.SummaryClient { return client },
			minerDI.GetSampler(sr), log)
	})

	di.RegisterToken(c, minerDI.Watchdog, func(sr di.ServiceRegistry) *supervisorapp.Watchdog {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return supervisorapp.NewWatchdog(minerDI.GetSupervisor(sr), cfg.Node.WatchdogLimit, log)
	})

	return nil
}

// Startup starts mining when enabled and always runs the status poller, so
// the idle snapshot reaches the frontend too.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	sr := mono.Services()
	miner := minerDI.GetCPUMiner(sr)

	if cfg.Miner.Enabled {
		if err := miner.Start(ctx); err != nil {
			log.Error(ctx, "failed to start cpu miner", "error", err)
			if cfg.App.TUIMode {
				ui.Send(ui.StartupMsg{Step: "miner", Status: "failed", Message: err.Error()})
			}
		} else if cfg.App.TUIMode {
			ui.Send(ui.StartupMsg{Step: "miner", Status: "connected"})
		}
		mono.OnShutdown("miner.cpu", miner.Stop)

		watchdog := minerDI.GetWatchdog(sr)
		mono.Health().RegisterCheck("cpu_miner", watchdog.HealthCheck())
		mono.Go(func() { watchdog.Run(ctx, cfg.Miner.PollInterval) })
	} else if cfg.App.TUIMode {
		ui.Send(ui.StartupMsg{Step: "miner", Status: "done", Message: "disabled"})
	}

	poller := app.NewStatusPoller(miner, nodeDI.GetBroadcast(sr), eventsDI.GetEmitter(sr), log).
		WithWalletAddress(cfg.Miner.WalletAddress)
	mono.Go(func() { poller.Run(ctx, cfg.Miner.PollInterval) })

	log.Info(ctx, "miner module started", "enabled", cfg.Miner.Enabled, "mode", cfg.Miner.Mode)
	return nil
}
