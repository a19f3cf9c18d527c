// Package main is the entry point for the universe worker supervisor.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmrrnn/universe/business/events"
	"github.com/mmrrnn/universe/business/hardware"
	"github.com/mmrrnn/universe/business/miner"
	"github.com/mmrrnn/universe/business/node"
	"github.com/mmrrnn/universe/internal/apm"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/health"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/metrics"
	"github.com/mmrrnn/universe/internal/monolith"
	"github.com/mmrrnn/universe/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("universe %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.App.TUIMode = tuiMode

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
		log.Info(ctx, "starting universe",
			"version", version,
			"environment", cfg.App.Environment,
			"node", cfg.Node.Type,
		)
	}

	if cfg.Telemetry.Enabled {
		traceProvider := apm.NewTraceProvider(log,
			apm.WithServiceName(cfg.Telemetry.ServiceName),
			apm.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
			apm.WithHeaders(cfg.Telemetry.OTLPHeaders),
		)
		defer traceProvider.Stop()

		meterProvider, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer meterProvider.Shutdown(context.Background())

		metricsServer := metrics.NewServer(cfg.Telemetry.PrometheusPort, nil, log)
		metricsServer.Start()
		defer metricsServer.Stop(context.Background())
	}

	healthServer := health.NewServer(cfg.Health.Port, version, log)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer healthServer.Stop(context.Background())

	mono := monolith.New(cfg, log, healthServer)

	// Define modules in dependency order
	modules := []monolith.Module{
		&events.Module{},   // Must be first - every other module emits through it
		&node.Module{},     // Publishes the node status broadcast
		&miner.Module{},    // Prices hash rate against the node broadcast
		&hardware.Module{}, // Emits GPU device updates
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if tuiMode {
		err = runTUI(appCtx, cancel, mono, modules)
	} else {
		err = runCLI(appCtx, mono, modules, log)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if closeErr := mono.Close(shutdownCtx); closeErr != nil {
		log.Error(shutdownCtx, "shutdown incomplete", "error", closeErr)
	}
	return err
}

func runCLI(ctx context.Context, mono monolith.Application, modules []monolith.Module, log *logger.Logger) error {
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	log.Info(ctx, "all modules started")
	<-ctx.Done()
	log.Info(context.Background(), "shutting down")
	return nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, mono monolith.Application, modules []monolith.Module) error {
	program := ui.NewProgram()

	errCh := make(chan error, 1)
	mono.Go(func() {
		// Modules start behind the welcome screen; progress arrives as StartupMsg
		if err := mono.StartModules(ctx, modules...); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- fmt.Errorf("failed to start modules: %w", err)
		}
	})

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if err := ui.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
