package app

import (
	"context"
	"time"

	nodedomain "github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/watch"
)

// StatusPoller periodically emits the CPU mining status priced against the
// latest node snapshot.
type StatusPoller struct {
	miner   *CPUMiner
	node    *watch.Channel[nodedomain.BaseNodeStatus]
	emitter EventEmitter
	logger  logger.LoggerInterface

	walletAddress string
}

func NewStatusPoller(
	miner *CPUMiner,
	node *watch.Channel[nodedomain.BaseNodeStatus],
	emitter EventEmitter,
	log logger.LoggerInterface,
) *StatusPoller {
	return &StatusPoller{miner: miner, node: node, emitter: emitter, logger: log}
}

// WithWalletAddress sets the payout address announced when Run starts.
func (p *StatusPoller) WithWalletAddress(address string) *StatusPoller {
	p.walletAddress = address
	return p
}

// Run announces the wallet address, then polls every interval until ctx is
// done.
func (p *StatusPoller) Run(ctx context.Context, interval time.Duration) {
	p.AnnounceWallet(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll emits one status update.
func (p *StatusPoller) Poll(ctx context.Context) {
	node := p.node.Borrow()

	status, err := p.miner.Status(ctx, node.RandomXNetworkHashrate, node.BlockReward)
	if err != nil {
		p.logger.Warn(ctx, "cpu miner status unavailable", "error", err)
		return
	}
	p.emitter.EmitCPUMiningUpdate(ctx, status)
}

// AnnounceWallet emits the payout address. The emoji form needs the wallet's
// emoji table and is left empty.
func (p *StatusPoller) AnnounceWallet(ctx context.Context) {
	if p.walletAddress == "" {
		return
	}
	p.emitter.EmitWalletAddressUpdate(ctx, p.walletAddress, "")
}
