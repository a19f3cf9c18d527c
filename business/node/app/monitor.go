package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmrrnn/universe/business/node/domain"
	supervisordomain "github.com/mmrrnn/universe/business/supervisor/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/watch"
)

// NodeStatusMonitor is the supervisor health check for a base node. Every
// successful check publishes the fresh status on the broadcast channel.
type NodeStatusMonitor struct {
	nodeType  domain.NodeType
	service   *NodeAdapterService
	broadcast *watch.Channel[domain.BaseNodeStatus]
	timeout   time.Duration
	logger    logger.LoggerInterface

	checks    metric.Int64Counter
	lastBlock metric.Int64Gauge
}

// NewNodeStatusMonitor creates a monitor. timeout bounds the network state
// query; zero means 5s.
func NewNodeStatusMonitor(
	nodeType domain.NodeType,
	service *NodeAdapterService,
	broadcast *watch.Channel[domain.BaseNodeStatus],
	timeout time.Duration,
	log logger.LoggerInterface,
) *NodeStatusMonitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	m := &NodeStatusMonitor{
		nodeType:  nodeType,
		service:   service,
		broadcast: broadcast,
		timeout:   timeout,
		logger:    log,
	}

	meter := otel.Meter(meterName)
	var err error
	if m.checks, err = meter.Int64Counter(
		"node_health_checks_total",
		metric.WithDescription("Node health checks by status"),
		metric.WithUnit("{check}"),
	); err != nil {
		log.Warn(context.Background(), "metric init failed", "metric", "node_health_checks_total", "error", err)
	}
	if m.lastBlock, err = meter.Int64Gauge(
		"node_block_height",
		metric.WithDescription("Best block height reported by the node"),
		metric.WithUnit("{block}"),
	); err != nil {
		log.Warn(context.Background(), "metric init failed", "metric", "node_block_height", "error", err)
	}

	return m
}

// CheckHealth queries the node and classifies the result.
func (m *NodeStatusMonitor) CheckHealth(ctx context.Context, _ time.Duration) supervisordomain.HealthStatus {
	status := m.check(ctx)
	if m.checks != nil {
		m.checks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("node_type", string(m.nodeType)),
			attribute.String("status", status.String()),
		))
	}
	return status
}

func (m *NodeStatusMonitor) check(ctx context.Context) supervisordomain.HealthStatus {
	queryCtx, cancel := context.WithTimeout(ctx, m.timeout)
	status, err := m.service.GetNetworkState(queryCtx)
	timedOut := errors.Is(queryCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err == nil {
		m.broadcast.Send(status)
		if m.lastBlock != nil {
			m.lastBlock.Record(ctx, int64(status.BlockHeight))
		}

		// a remote node always reports zero connections
		if status.NumConnections == 0 && m.nodeType != domain.NodeTypeRemote {
			m.logger.Warn(ctx, "node health check warning: no connections", "node_type", m.nodeType)
			return supervisordomain.Warning
		}
		return supervisordomain.Healthy
	}

	if !timedOut && apperror.GetCode(err) != apperror.CodeServiceTimeout {
		m.logger.Warn(ctx, "node health check error", "node_type", m.nodeType, "error", err)
		return supervisordomain.Unhealthy
	}

	m.logger.Warn(ctx, "node health check timed out, probing identity", "node_type", m.nodeType)

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	identity, err := m.service.GetIdentity(probeCtx)
	if err != nil {
		m.logger.Warn(ctx, "node identity probe failed", "node_type", m.nodeType, "error", err)
		return supervisordomain.Unhealthy
	}

	m.logger.Info(ctx, "node identity", "node_type", m.nodeType, "public_key", identity.PublicKey)
	return supervisordomain.Healthy
}
