package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/apm"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

const (
	tracerName = "github.com/mmrrnn/universe/business/node/app"
	meterName  = "github.com/mmrrnn/universe/business/node/app"
)

// orphanSampleDepths are the distances below the oracle tip compared
// against the local chain.
var orphanSampleDepths = []uint64{50, 100, 200}

// ServiceConfig holds NodeAdapterService settings.
type ServiceConfig struct {
	RequiredSyncPeers uint32
	SyncInterval      time.Duration
}

// DefaultServiceConfig returns the standard sync settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RequiredSyncPeers: 3,
		SyncInterval:      time.Second,
	}
}

type serviceMetrics struct {
	syncUpdates  metric.Int64Counter
	orphanChecks metric.Int64Counter
}

// NodeAdapterService talks to exactly one base node for its lifetime.
type NodeAdapterService struct {
	config ServiceConfig
	client NodeClient
	oracle BlockScanOracle
	logger logger.LoggerInterface

	tracer  apm.Tracer
	metrics *serviceMetrics
}

// NewNodeAdapterService creates a service over client. oracle may be nil,
// in which case orphan checks fail.
func NewNodeAdapterService(cfg ServiceConfig, client NodeClient, oracle BlockScanOracle, log logger.LoggerInterface) (*NodeAdapterService, error) {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = time.Second
	}

	s := &NodeAdapterService{
		config: cfg,
		client: client,
		oracle: oracle,
		logger: log,
		tracer: apm.NewTracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *NodeAdapterService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.syncUpdates, err = meter.Int64Counter(
		"node_sync_updates_total",
		metric.WithDescription("Sync progress updates by phase"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return err
	}

	s.metrics.orphanChecks, err = meter.Int64Counter(
		"node_orphan_checks_total",
		metric.WithDescription("Orphan chain checks by result"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetNetworkState returns the node's current status snapshot.
func (s *NodeAdapterService) GetNetworkState(ctx context.Context) (domain.BaseNodeStatus, error) {
	state, err := s.client.GetNetworkState(ctx)
	if err != nil {
		return domain.BaseNodeStatus{}, err
	}
	if state.Metadata == nil {
		return domain.BaseNodeStatus{}, apperror.New(apperror.CodeNodeRPCError,
			apperror.WithContext("no metadata found"))
	}

	return domain.BaseNodeStatus{
		ShaNetworkHashrate:     state.Sha3xEstimatedHashRate,
		RandomXNetworkHashrate: state.RandomXEstimatedHashRate,
		BlockReward:            state.Reward,
		BlockHeight:            state.Metadata.BestBlockHeight,
		BlockTime:              state.Metadata.Timestamp,
		IsSynced:               state.InitialSyncAchieved,
		NumConnections:         state.NumConnections,
	}, nil
}

// GetHistoricalBlocks returns (height, hash) pairs for the requested heights.
func (s *NodeAdapterService) GetHistoricalBlocks(ctx context.Context, heights []uint64) ([]domain.BlockRef, error) {
	return s.client.GetBlocks(ctx, heights)
}

// GetIdentity returns the node's public key and addresses.
func (s *NodeAdapterService) GetIdentity(ctx context.Context) (*domain.NodeIdentity, error) {
	return s.client.Identify(ctx)
}

// ListConnectedPeers returns the node's current peers.
func (s *NodeAdapterService) ListConnectedPeers(ctx context.Context) ([]domain.Peer, error) {
	return s.client.ListConnectedPeers(ctx)
}

// WaitSynced polls the node until it reports initial sync achieved,
// reporting progress to the sink for the current phase. It returns nil
// when synced or when ctx is cancelled.
func (s *NodeAdapterService) WaitSynced(ctx context.Context, sinks SyncSinks) error {
	ctx, span := s.tracer.Start(ctx, "node.wait_synced")
	defer span.End()

	for {
		if ctx.Err() != nil {
			return nil
		}

		tip, err := s.client.GetTipInfo(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			span.NoticeError(err)
			return err
		}
		progress, err := s.client.GetSyncProgress(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			span.NoticeError(err)
			return err
		}

		if tip.InitialSyncAchieved {
			s.logger.Info(ctx, "node initial sync achieved")
			span.MarkOK()
			return nil
		}

		if sink := sinks.forPhase(progress.Phase); sink != nil {
			pct := progress.Percentage(s.config.RequiredSyncPeers)
			sink.SendUpdate(ctx, progress.Params(s.config.RequiredSyncPeers), pct)
			s.metrics.syncUpdates.Add(ctx, 1, metric.WithAttributes(
				attribute.String("phase", progress.Phase.String())))
		}

		timer := time.NewTimer(s.config.SyncInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// CheckIfIsOrphanChain compares sampled blocks from the block-scan oracle
// with the local chain. A node that is not synced is never reported as
// orphaned. When report is set a mismatch is logged as an error and
// recorded on the span.
func (s *NodeAdapterService) CheckIfIsOrphanChain(ctx context.Context, report bool) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "node.check_orphan_chain")
	defer span.End()

	status, err := s.GetNetworkState(ctx)
	if err != nil {
		span.NoticeError(err)
		return false, err
	}
	if !status.IsSynced {
		s.logger.Info(ctx, "node is not synced, skipping orphan chain check")
		s.recordOrphanCheck(ctx, "skipped")
		return false, nil
	}

	if s.oracle == nil {
		err := apperror.New(apperror.CodeBlockScanError,
			apperror.WithCause(errors.New("no block scan oracle configured")))
		span.NoticeError(err)
		return false, err
	}

	scanTip, err := s.oracle.BestBlockHeight(ctx)
	if err != nil {
		span.NoticeError(err)
		return false, err
	}

	heights := make([]uint64, 0, len(orphanSampleDepths))
	for _, depth := range orphanSampleDepths {
		heights = append(heights, saturatingSub(scanTip, depth))
	}

	scanBlocks := make([]domain.BlockRef, 0, len(heights))
	for _, h := range heights {
		block, err := s.oracle.BlockAt(ctx, h)
		if err != nil {
			span.NoticeError(err)
			return false, err
		}
		scanBlocks = append(scanBlocks, block)
	}

	localBlocks, err := s.GetHistoricalBlocks(ctx, heights)
	if err != nil {
		span.NoticeError(err)
		return false, err
	}

	localHashes := make(map[string]struct{}, len(localBlocks))
	for _, b := range localBlocks {
		localHashes[b.Hash] = struct{}{}
	}

	for _, scanBlock := range scanBlocks {
		if _, ok := localHashes[scanBlock.Hash]; ok {
			continue
		}

		if report {
			s.logger.Error(ctx, "orphan chain detected",
				"block_scan_block_height", strconv.FormatUint(scanBlock.Height, 10),
				"block_scan_block_hash", scanBlock.Hash,
				"block_scan_tip_height", strconv.FormatUint(scanTip, 10),
				"local_tip_height", strconv.FormatUint(status.BlockHeight, 10))
			span.AddEvent("orphan_chain_detected",
				attribute.String("block_scan_block_height", strconv.FormatUint(scanBlock.Height, 10)),
				attribute.String("block_scan_block_hash", scanBlock.Hash),
				attribute.String("block_scan_tip_height", strconv.FormatUint(scanTip, 10)),
				attribute.String("local_tip_height", strconv.FormatUint(status.BlockHeight, 10)),
			)
		}
		s.recordOrphanCheck(ctx, "orphan")
		return true, nil
	}

	s.recordOrphanCheck(ctx, "canonical")
	span.MarkOK()
	return false, nil
}

func (s *NodeAdapterService) recordOrphanCheck(ctx context.Context, result string) {
	s.metrics.orphanChecks.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
