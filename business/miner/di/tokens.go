// Package di contains dependency injection tokens for the CPU mining context.
package di

import (
	"github.com/mmrrnn/universe/business/miner/app"
	"github.com/mmrrnn/universe/business/miner/infra/xmrig"
	supervisorapp "github.com/mmrrnn/universe/business/supervisor/app"
	"github.com/mmrrnn/universe/internal/di"
)

// Public service tokens - exposed to other modules
var (
	CPUMiner = di.NewToken[*app.CPUMiner]("miner.CPUMiner")
)

// Private dependency tokens - internal to miner module
var (
	APIClient  = di.NewToken[*xmrig.Client]("miner:apiClient")
	Sampler    = di.NewToken[app.CPUSampler]("miner:sampler")
	Supervisor = di.NewToken[*supervisorapp.Supervisor]("miner:supervisor")
	Watchdog   = di.NewToken[*supervisorapp.Watchdog]("miner:watchdog")
)

func GetCPUMiner(c di.ServiceRegistry) *app.CPUMiner {
	return di.GetToken(c, CPUMiner)
}

func GetAPIClient(c di.ServiceRegistry) *xmrig.Client {
	return di.GetToken(c, APIClient)
}

func GetSampler(c di.ServiceRegistry) app.CPUSampler {
	return di.GetToken(c, Sampler)
}

func GetSupervisor(c di.ServiceRegistry) *supervisorapp.Supervisor {
	return di.GetToken(c, Supervisor)
}

func GetWatchdog(c di.ServiceRegistry) *supervisorapp.Watchdog {
	return di.GetToken(c, Watchdog)
}
