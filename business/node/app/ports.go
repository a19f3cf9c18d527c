// Package app contains application services and port definitions for the base node context.
package app

import (
	"context"

	"github.com/mmrrnn/universe/business/node/domain"
)

// NodeClient is a typed client for the base node's RPC interface.
// Implementations return NODE_NOT_STARTED when the node cannot be reached
// and NODE_RPC_ERROR when a reachable node fails a call.
type NodeClient interface {
	GetNetworkState(ctx context.Context) (*domain.NetworkState, error)
	GetBlocks(ctx context.Context, heights []uint64) ([]domain.BlockRef, error)
	Identify(ctx context.Context) (*domain.NodeIdentity, error)
	ListConnectedPeers(ctx context.Context) ([]domain.Peer, error)
	GetTipInfo(ctx context.Context) (*domain.TipInfo, error)
	GetSyncProgress(ctx context.Context) (*domain.SyncProgress, error)
}

// BlockScanOracle is an external source of truth for the canonical chain.
type BlockScanOracle interface {
	BestBlockHeight(ctx context.Context) (uint64, error)
	BlockAt(ctx context.Context, height uint64) (domain.BlockRef, error)
}

// ProgressSink receives sync progress updates for one phase.
type ProgressSink interface {
	SendUpdate(ctx context.Context, params map[string]string, percentage float64)
}

// ProgressSinkFunc adapts a function to ProgressSink.
type ProgressSinkFunc func(ctx context.Context, params map[string]string, percentage float64)

func (f ProgressSinkFunc) SendUpdate(ctx context.Context, params map[string]string, percentage float64) {
	f(ctx, params, percentage)
}

// SyncSinks routes progress by phase. Nil sinks are skipped.
type SyncSinks struct {
	Startup ProgressSink
	Header  ProgressSink
	Block   ProgressSink
}

func (s SyncSinks) forPhase(p domain.SyncPhase) ProgressSink {
	switch p {
	case domain.SyncPhaseStartup:
		return s.Startup
	case domain.SyncPhaseHeader:
		return s.Header
	case domain.SyncPhaseBlock:
		return s.Block
	default:
		return nil
	}
}

// EventEmitter is the outbound side of the node context.
type EventEmitter interface {
	EmitBaseNodeUpdate(ctx context.Context, status domain.BaseNodeStatus)
	EmitNewBlockHeight(ctx context.Context, height uint64)
	EmitConnectedPeersUpdate(ctx context.Context, peers []string)
}
