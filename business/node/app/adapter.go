package app

import (
	"context"
	"net"
	"net/url"

	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/business/supervisor/infra/process"
	"github.com/mmrrnn/universe/internal/logger"
)

// LocalAdapterConfig describes the local base node binary.
type LocalAdapterConfig struct {
	BinaryPath string
	DataDir    string
	Network    string
	RPCAddress string // http://host:port
	Process    process.Config
}

// LocalNodeAdapter spawns a base node on this machine.
type LocalNodeAdapter struct {
	config  LocalAdapterConfig
	monitor *NodeStatusMonitor
	logger  logger.LoggerInterface
}

var _ supervisorapp.ProcessAdapter = (*LocalNodeAdapter)(nil)

// NewLocalNodeAdapter creates an adapter whose instances are checked by monitor.
func NewLocalNodeAdapter(cfg LocalAdapterConfig, monitor *NodeStatusMonitor, log logger.LoggerInterface) *LocalNodeAdapter {
	return &LocalNodeAdapter{config: cfg, monitor: monitor, logger: log}
}

func (a *LocalNodeAdapter) Name() string { return "minotari_node" }

// Args returns the command line for the node binary.
func (a *LocalNodeAdapter) Args() []string {
	args := []string{"--non-interactive-mode"}
	if a.config.DataDir != "" {
		args = append(args, "-b", a.config.DataDir)
	}
	if a.config.Network != "" {
		args = append(args, "--network", a.config.Network)
	}
	if hostPort := rpcHostPort(a.config.RPCAddress); hostPort != "" {
		args = append(args,
			"-p", "base_node.grpc_enabled=true",
			"-p", "base_node.grpc_address="+hostPort,
		)
	}
	return args
}

// Spawn starts the node process.
func (a *LocalNodeAdapter) Spawn(ctx context.Context) (supervisorapp.ProcessInstance, supervisorapp.StatusMonitor, error) {
	cfg := a.config.Process
	cfg.Name = a.Name()
	cfg.Path = a.config.BinaryPath
	cfg.Args = a.Args()
	if cfg.Dir == "" {
		cfg.Dir = a.config.DataDir
	}

	handle, err := process.Start(ctx, cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return handle, a.monitor, nil
}

func rpcHostPort(address string) string {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(u.Host); err != nil {
		return ""
	}
	return u.Host
}

// RemoteNodeAdapter represents a node reached over the network. There is no
// process to spawn; liveness comes entirely from the monitor.
type RemoteNodeAdapter struct {
	monitor *NodeStatusMonitor
}

var _ supervisorapp.ProcessAdapter = (*RemoteNodeAdapter)(nil)

// NewRemoteNodeAdapter creates a remote adapter.
func NewRemoteNodeAdapter(monitor *NodeStatusMonitor) *RemoteNodeAdapter {
	return &RemoteNodeAdapter{monitor: monitor}
}

func (a *RemoteNodeAdapter) Name() string { return "remote_node" }

func (a *RemoteNodeAdapter) Spawn(context.Context) (supervisorapp.ProcessInstance, supervisorapp.StatusMonitor, error) {
	return remoteInstance{}, a.monitor, nil
}

type remoteInstance struct{}

func (remoteInstance) Ping() bool                 { return true }
func (remoteInstance) Stop(context.Context) error { return nil }
func (remoteInstance) PID() int                   { return 0 }

