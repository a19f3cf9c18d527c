// Package di contains dependency injection tokens for the base node context.
package di

import (
	"github.com/mmrrnn/universe/business/node/app"
	"github.com/mmrrnn/universe/business/node/domain"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/watch"
)

// Public service tokens - exposed to other modules
var (
	NodeService = di.NewToken[*app.NodeAdapterService]("node.NodeAdapterService")
	Broadcast   = di.NewToken[*watch.Channel[domain.BaseNodeStatus]]("node.StatusBroadcast")
)

// Private dependency tokens - internal to node module
var (
	Client     = di.NewToken[app.NodeClient]("node:client")
	Oracle     = di.NewToken[app.BlockScanOracle]("node:oracle")
	Monitor    = di.NewToken[*app.NodeStatusMonitor]("node:monitor")
	Adapter    = di.NewToken[supervisorapp.ProcessAdapter]("node:adapter")
	Supervisor = di.NewToken[*supervisorapp.Supervisor]("node:supervisor")
	Watchdog   = di.NewToken[*supervisorapp.Watchdog]("node:watchdog")
)

// Helper functions for type-safe access
func GetNodeService(c di.ServiceRegistry) *app.NodeAdapterService {
	return di.GetToken(c, NodeService)
}

func GetBroadcast(c di.ServiceRegistry) *watch.Channel[domain.BaseNodeStatus] {
	return di.GetToken(c, Broadcast)
}

func GetClient(c di.ServiceRegistry) app.NodeClient {
	return di.GetToken(c, Client)
}

func GetOracle(c di.ServiceRegistry) app.BlockScanOracle {
	return di.GetToken(c, Oracle)
}

func GetMonitor(c di.ServiceRegistry) *app.NodeStatusMonitor {
	return di.GetToken(c, Monitor)
}

func GetAdapter(c di.ServiceRegistry) supervisorapp.ProcessAdapter {
	return di.GetToken(c, Adapter)
}

func GetSupervisor(c di.ServiceRegistry) *supervisorapp.Supervisor {
	return di.GetToken(c, Supervisor)
}

func GetWatchdog(c di.ServiceRegistry) *supervisorapp.Watchdog {
	return di.GetToken(c, Watchdog)
}
