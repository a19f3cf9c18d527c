package xmrig

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/mmrrnn/universe/business/miner/domain"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/business/supervisor/infra/process"
	"github.com/mmrrnn/universe/internal/logger"
)

// AdapterConfig describes how to launch xmrig.
type AdapterConfig struct {
	BinaryPath string
	PoolURL    string
	Wallet     string
	Mode       domain.MiningMode
	APIPort    int
	APIToken   string
	LogDir     string
	Process    process.Config
}

// Adapter spawns xmrig processes for the supervisor.
type Adapter struct {
	config  AdapterConfig
	monitor *StatusMonitor
	logger  logger.LoggerInterface
}

var _ supervisorapp.ProcessAdapter = (*Adapter)(nil)

func NewAdapter(cfg AdapterConfig, monitor *StatusMonitor, log logger.LoggerInterface) *Adapter {
	return &Adapter{config: cfg, monitor: monitor, logger: log}
}

func (a *Adapter) Name() string { return "xmrig" }

// Args returns the xmrig command line.
func (a *Adapter) Args() []string {
	args := []string{
		"--url=" + a.config.PoolURL,
		"--user=" + a.config.Wallet,
		"--http-host=127.0.0.1",
		"--http-port=" + strconv.Itoa(a.config.APIPort),
		"--cpu-max-threads-hint=" + strconv.Itoa(a.config.Mode.MaxCPUPercentage()),
		"--donate-level=1",
	}
	if a.config.APIToken != "" {
		args = append(args, "--http-access-token="+a.config.APIToken)
	}
	if a.config.LogDir != "" {
		args = append(args, "--log-file="+filepath.Join(a.config.LogDir, "xmrig.log"))
	}
	return args
}

// Spawn starts xmrig.
func (a *Adapter) Spawn(ctx context.Context) (supervisorapp.ProcessInstance, supervisorapp.StatusMonitor, error) {
	cfg := a.config.Process
	cfg.Name = a.Name()
	cfg.Path = a.config.BinaryPath
	cfg.Args = a.Args()

	handle, err := process.Start(ctx, cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return handle, a.monitor, nil
}
