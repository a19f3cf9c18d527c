package app

import (
	"context"
	"errors"
	"time"

	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/watch"
)

// StatusPoller forwards published node statuses as outbound events and runs
// the periodic orphan chain check.
type StatusPoller struct {
	service       *NodeAdapterService
	broadcast     *watch.Channel[domain.BaseNodeStatus]
	emitter       EventEmitter
	logger        logger.LoggerInterface
	orphanEvery   time.Duration
	lastHeight    uint64
	orphanHandler func(ctx context.Context, orphaned bool)
}

// NewStatusPoller creates a poller. orphanEvery of zero disables the orphan check.
func NewStatusPoller(
	service *NodeAdapterService,
	broadcast *watch.Channel[domain.BaseNodeStatus],
	emitter EventEmitter,
	orphanEvery time.Duration,
	log logger.LoggerInterface,
) *StatusPoller {
	return &StatusPoller{
		service:     service,
		broadcast:   broadcast,
		emitter:     emitter,
		logger:      log,
		orphanEvery: orphanEvery,
	}
}

// OnOrphanCheck registers a callback for orphan check results.
func (p *StatusPoller) OnOrphanCheck(fn func(ctx context.Context, orphaned bool)) {
	p.orphanHandler = fn
}

// Run blocks until ctx is done or the broadcast channel is closed.
func (p *StatusPoller) Run(ctx context.Context) {
	if p.orphanEvery > 0 {
		go p.runOrphanChecks(ctx)
	}

	rx := p.broadcast.Subscribe()
	for {
		if err := rx.Changed(ctx); err != nil {
			if !errors.Is(err, watch.ErrClosed) && ctx.Err() == nil {
				p.logger.Error(ctx, "node status subscription ended", "error", err)
			}
			return
		}
		p.Forward(ctx, rx.Borrow())
	}
}

// Forward emits the events derived from one status snapshot.
func (p *StatusPoller) Forward(ctx context.Context, status domain.BaseNodeStatus) {
	p.emitter.EmitBaseNodeUpdate(ctx, status)

	if status.BlockHeight <= p.lastHeight {
		return
	}
	p.lastHeight = status.BlockHeight
	p.emitter.EmitNewBlockHeight(ctx, status.BlockHeight)

	peers, err := p.service.ListConnectedPeers(ctx)
	if err != nil {
		p.logger.Warn(ctx, "failed to list connected peers", "error", err)
		return
	}
	p.emitter.EmitConnectedPeersUpdate(ctx, peerAddresses(peers))
}

func (p *StatusPoller) runOrphanChecks(ctx context.Context) {
	ticker := time.NewTicker(p.orphanEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			orphaned, err := p.service.CheckIfIsOrphanChain(ctx, true)
			if err != nil {
				p.logger.Warn(ctx, "orphan chain check failed", "error", err)
				continue
			}
			if p.orphanHandler != nil {
				p.orphanHandler(ctx, orphaned)
			}
		}
	}
}

func peerAddresses(peers []domain.Peer) []string {
	out := make([]string, 0, len(peers))
	for _, peer := range peers {
		if len(peer.Addresses) > 0 {
			out = append(out, peer.Addresses[0])
			continue
		}
		out = append(out, peer.PublicKey)
	}
	return out
}
