// Package app contains application services and port definitions for the CPU mining context.
package app

import (
	"context"

	"github.com/mmrrnn/universe/business/miner/domain"
)

// SummaryClient reads the running miner's HTTP API.
type SummaryClient interface {
	Summary(ctx context.Context) (domain.Summary, error)
}

// CPUSampler measures host CPU load.
type CPUSampler interface {
	// Usage samples global CPU usage in percent over a short settle interval.
	Usage(ctx context.Context) (uint32, error)
	Brand(ctx context.Context) string
}

// EventEmitter is the outbound side of the mining context.
type EventEmitter interface {
	EmitCPUMiningUpdate(ctx context.Context, status domain.CPUMinerStatus)
	EmitWalletAddressUpdate(ctx context.Context, base58, emoji string)
}
