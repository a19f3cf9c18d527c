// Package node implements the base node bounded context: supervision,
// health, sync tracking and orphan chain detection.
package node

import (
	"context"
	"io"
	"time"

	eventsDI "github.com/mmrrnn/universe/business/events/di"
	"github.com/mmrrnn/universe/business/node/app"
	nodeDI "github.com/mmrrnn/universe/business/node/di"
	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/business/node/infra/blockscan"
	"github.com/mmrrnn/universe/business/node/infra/rpcnode"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/business/supervisor/infra/process"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/monolith"
	"github.com/mmrrnn/universe/internal/watch"
	"github.com/mmrrnn/universe/pkg/ui"
)

// syncRetryDelay is the pause before WaitSynced is retried after the node
// could not be reached.
const syncRetryDelay = 5 * time.Second

// Module implements the base node bounded context.
type Module struct{}

// RegisterServices registers all node services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register NodeClient (private - JSON-RPC to the node)
	di.RegisterToken(c, nodeDI.Client, func(sr di.ServiceRegistry) app.NodeClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := rpcnode.New(rpcnode.DefaultConfig(cfg.Node.RPCAddress), log)
		if err != nil {
			panic("failed to create node client: " + err.Error())
		}
		return client
	})

	// Register BlockScanOracle (private - nil when no explorer is configured)
	di.RegisterToken(c, nodeDI.Oracle, func(sr di.ServiceRegistry) app.BlockScanOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.BlockScan.BaseURL == "" {
			return nil
		}

		scanCfg := blockscan.DefaultConfig(cfg.BlockScan.BaseURL)
		scanCfg.Timeout = cfg.BlockScan.Timeout
		scanCfg.RequestsPerSecond = cfg.BlockScan.RequestsPerSecond
		scanCfg.Burst = cfg.BlockScan.Burst

		client, err := blockscan.New(scanCfg, log)
		if err != nil {
			panic("failed to create block scan client: " + err.Error())
		}
		return client
	})

	// Register NodeAdapterService (public - exposed to other modules)
	di.RegisterToken(c, nodeDI.NodeService, func(sr di.ServiceRegistry) *app.NodeAdapterService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svcCfg := app.DefaultServiceConfig()
		svcCfg.SyncInterval = cfg.Node.SyncInterval

		svc, err := app.NewNodeAdapterService(svcCfg, nodeDI.GetClient(sr), nodeDI.GetOracle(sr), log)
		if err != nil {
			panic("failed to create node service: " + err.Error())
		}
		return svc
	})

	// Register status broadcast (public - latest node snapshot)
	di.RegisterToken(c, nodeDI.Broadcast, func(di.ServiceRegistry) *watch.Channel[domain.BaseNodeStatus] {
		return watch.New(domain.BaseNodeStatus{})
	})

	di.RegisterToken(c, nodeDI.Monitor, func(sr di.ServiceRegistry) *app.NodeStatusMonitor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewNodeStatusMonitor(
			domain.ParseNodeType(cfg.Node.Type),
			nodeDI.GetNodeService(sr),
			nodeDI.GetBroadcast(sr),
			cfg.Node.HealthTimeout,
			log,
		)
	})

	// Register ProcessAdapter (private - local process or remote node)
	di.RegisterToken(c, nodeDI.Adapter, func(sr di.ServiceRegistry) supervisorapp.ProcessAdapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		monitor := nodeDI.GetMonitor(sr)

		if cfg.Node.IsRemote() {
			return app.NewRemoteNodeAdapter(monitor)
		}
		return app.NewLocalNodeAdapter(app.LocalAdapterConfig{
			BinaryPath: cfg.Node.BinaryPath,
			DataDir:    cfg.Node.DataDir,
			Network:    cfg.Node.Network,
			RPCAddress: cfg.Node.RPCAddress,
			Process: process.Config{
				StopGrace: cfg.Node.StopGrace,
				LogOutput: cfg.Events.LogEvents,
			},
		}, monitor, log)
	})

	di.RegisterToken(c, nodeDI.Supervisor, func(sr di.ServiceRegistry) *supervisorapp.Supervisor {
		log := sr.Get("logger").(logger.LoggerInterface)
		return supervisorapp.NewSupervisor(supervisorapp.DefaultSupervisorConfig("base_node"), log)
	})

	di.RegisterToken(c, nodeDI.Watchdog, func(sr di.ServiceRegistry) *supervisorapp.Watchdog {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return supervisorapp.NewWatchdog(nodeDI.GetSupervisor(sr), cfg.Node.WatchdogLimit, log)
	})

	return nil
}

// Startup starts the node worker and its background loops.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	sr := mono.Services()

	// A failed first spawn is retried by the watchdog.
	sup := nodeDI.GetSupervisor(sr)
	if err := sup.Start(ctx, nodeDI.GetAdapter(sr)); err != nil {
		log.Error(ctx, "failed to start base node", "error", err)
		if cfg.App.TUIMode {
			ui.Send(ui.StartupMsg{Step: "node", Status: "failed", Message: err.Error()})
		}
	} else if cfg.App.TUIMode {
		ui.Send(ui.StartupMsg{Step: "node", Status: "connected"})
	}

	mono.OnShutdown("node.supervisor", sup.Stop)
	mono.OnShutdown("node.broadcast", func(context.Context) error {
		nodeDI.GetBroadcast(sr).Close()
		return nil
	})
	closeOnShutdown(mono, "node.client", nodeDI.GetClient(sr))

	watchdog := nodeDI.GetWatchdog(sr)
	mono.Health().RegisterCheck("base_node", watchdog.HealthCheck())
	mono.Go(func() { watchdog.Run(ctx, cfg.Node.PollInterval) })

	poller := app.NewStatusPoller(
		nodeDI.GetNodeService(sr),
		nodeDI.GetBroadcast(sr),
		eventsDI.GetEmitter(sr),
		cfg.BlockScan.CheckInterval,
		log,
	)
	poller.OnOrphanCheck(func(ctx context.Context, orphaned bool) {
		if orphaned {
			log.Warn(ctx, "node is on an orphan chain")
		}
	})
	mono.Go(func() { poller.Run(ctx) })

	mono.Go(func() { waitSynced(ctx, nodeDI.GetNodeService(sr), syncSinks(cfg, log), log) })

	log.Info(ctx, "node module started", "type", cfg.Node.Type, "rpc", cfg.Node.RPCAddress)
	return nil
}

// waitSynced retries WaitSynced until the node reports sync or ctx ends.
func waitSynced(ctx context.Context, svc *app.NodeAdapterService, sinks app.SyncSinks, log logger.LoggerInterface) {
	for {
		err := svc.WaitSynced(ctx, sinks)
		if err == nil {
			return
		}
		log.Warn(ctx, "waiting for node sync", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(syncRetryDelay):
		}
	}
}

func syncSinks(cfg *config.Config, log logger.LoggerInterface) app.SyncSinks {
	sink := func(phase domain.SyncPhase) app.ProgressSink {
		return app.ProgressSinkFunc(func(ctx context.Context, params map[string]string, pct float64) {
			log.Info(ctx, "node sync progress", "phase", phase.String(), "percentage", pct, "params", params)
			if cfg.App.TUIMode {
				ui.Send(ui.SyncProgressMsg{Phase: phase.String(), Percentage: pct})
			}
		})
	}
	return app.SyncSinks{
		Startup: sink(domain.SyncPhaseStartup),
		Header:  sink(domain.SyncPhaseHeader),
		Block:   sink(domain.SyncPhaseBlock),
	}
}

// closeOnShutdown registers v's Close as a shutdown hook when v has one.
func closeOnShutdown(mono monolith.Monolith, name string, v any) {
	if closer, ok := v.(io.Closer); ok {
		mono.OnShutdown(name, func(context.Context) error { return closer.Close() })
	}
}
