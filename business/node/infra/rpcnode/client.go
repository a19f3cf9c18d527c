// Package rpcnode provides a typed JSON-RPC client for the base node.
package rpcnode

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmrrnn/universe/business/node/app"
	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

const (
	tracerName = "github.com/mmrrnn/universe/business/node/infra/rpcnode"
	meterName  = "github.com/mmrrnn/universe/business/node/infra/rpcnode"

	namespace = "basenode"
)

// Config holds configuration for the node client.
type Config struct {
	Address     string        // http(s):// or ws(s):// endpoint
	DialTimeout time.Duration // bound on establishing the connection
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(address string) Config {
	return Config{
		Address:     address,
		DialTimeout: 5 * time.Second,
	}
}

type clientMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// Client implements app.NodeClient over go-ethereum's JSON-RPC transport.
type Client struct {
	config Config
	logger logger.LoggerInterface

	client   *rpc.Client
	clientMu sync.RWMutex

	tracer  trace.Tracer
	metrics *clientMetrics
}

var (
	_ app.NodeClient = (*Client)(nil)
	_ io.Closer      = (*Client)(nil)
)

// New creates a client that dials lazily on first use.
func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		config: cfg,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewWithRPC wraps an existing rpc client.
func NewWithRPC(rc *rpc.Client, log logger.LoggerInterface) (*Client, error) {
	c, err := New(Config{Address: "inproc"}, log)
	if err != nil {
		return nil, err
	}
	c.client = rc
	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.calls, err = meter.Int64Counter(
		"node_rpc_calls_total",
		metric.WithDescription("Base node RPC calls by method and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	c.metrics.duration, err = meter.Float64Histogram(
		"node_rpc_duration_ms",
		metric.WithDescription("Base node RPC latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Connect dials the node.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "node.connect",
		trace.WithAttributes(attribute.String("address", c.config.Address)),
	)
	defer span.End()

	if c.config.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.DialTimeout)
		defer cancel()
	}

	rc, err := rpc.DialContext(ctx, c.config.Address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return apperror.New(apperror.CodeNodeNotStarted,
			apperror.WithCause(err),
			apperror.WithContext(c.config.Address))
	}

	c.clientMu.Lock()
	if c.client != nil {
		c.client.Close()
	}
	c.client = rc
	c.clientMu.Unlock()

	span.SetStatus(codes.Ok, "connected")
	c.logger.Debug(ctx, "node client connected", "address", c.config.Address)

	return nil
}

func (c *Client) rpcClient(ctx context.Context) (*rpc.Client, error) {
	c.clientMu.RLock()
	rc := c.client
	c.clientMu.RUnlock()

	if rc != nil {
		return rc, nil
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	c.clientMu.RLock()
	defer c.clientMu.RUnlock()
	return c.client, nil
}

func (c *Client) call(ctx context.Context, method string, result any, args ...any) error {
	ctx, span := c.tracer.Start(ctx, "node."+method,
		trace.WithAttributes(attribute.String("rpc.method", method)),
	)
	defer span.End()

	start := time.Now()

	rc, err := c.rpcClient(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "not connected")
		c.record(ctx, method, start, false)
		return err
	}

	if err := rc.CallContext(ctx, result, namespace+"_"+method, args...); err != nil {
		mapped := mapError(err, method)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperror.GetCode(mapped)))
		c.record(ctx, method, start, false)
		return mapped
	}

	span.SetStatus(codes.Ok, "ok")
	c.record(ctx, method, start, true)
	return nil
}

func (c *Client) record(ctx context.Context, method string, start time.Time, success bool) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	)
	c.metrics.calls.Add(ctx, 1, attrs)
	c.metrics.duration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}

func mapError(err error, method string) error {
	code := apperror.CodeNodeRPCError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = apperror.CodeServiceTimeout
	case isConnectionError(err):
		code = apperror.CodeNodeNotStarted
	}
	return apperror.New(code, apperror.WithCause(err), apperror.WithContext(method))
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, rpc.ErrClientQuit)
}

func malformed(method, what string) error {
	return apperror.New(apperror.CodeNodeRPCError,
		apperror.WithContext(method+": "+what))
}

// GetNetworkState queries the node's network state.
func (c *Client) GetNetworkState(ctx context.Context) (*domain.NetworkState, error) {
	var res *networkState
	if err := c.call(ctx, "getNetworkState", &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, malformed("getNetworkState", "empty response")
	}

	return &domain.NetworkState{
		Metadata:                 res.Metadata.toDomain(),
		InitialSyncAchieved:      res.InitialSyncAchieved,
		Reward:                   res.Reward,
		Sha3xEstimatedHashRate:   res.Sha3xEstimatedHashRate,
		RandomXEstimatedHashRate: res.RandomXEstimatedHashRate,
		NumConnections:           res.NumConnections,
	}, nil
}

// GetBlocks fetches the headers at the given heights.
func (c *Client) GetBlocks(ctx context.Context, heights []uint64) ([]domain.BlockRef, error) {
	var res []historicalBlock
	if err := c.call(ctx, "getBlocks", &res, heights); err != nil {
		return nil, err
	}

	blocks := make([]domain.BlockRef, 0, len(res))
	for _, hb := range res {
		if hb.Block == nil || hb.Block.Header == nil {
			return nil, malformed("getBlocks", "block without header")
		}
		blocks = append(blocks, domain.BlockRef{
			Height: hb.Block.Header.Height,
			Hash:   common.Bytes2Hex(hb.Block.Header.Hash),
		})
	}
	return blocks, nil
}

// Identify returns the node identity.
func (c *Client) Identify(ctx context.Context) (*domain.NodeIdentity, error) {
	var res *identity
	if err := c.call(ctx, "identify", &res); err != nil {
		return nil, err
	}
	if res == nil || len(res.PublicKey) == 0 {
		return nil, malformed("identify", "missing public key")
	}
	return &domain.NodeIdentity{
		PublicKey:       common.Bytes2Hex(res.PublicKey),
		PublicAddresses: res.PublicAddresses,
	}, nil
}

// ListConnectedPeers returns the node's connected peers.
func (c *Client) ListConnectedPeers(ctx context.Context) ([]domain.Peer, error) {
	var res struct {
		ConnectedPeers []peer `json:"connected_peers"`
	}
	if err := c.call(ctx, "listConnectedPeers", &res); err != nil {
		return nil, err
	}

	peers := make([]domain.Peer, 0, len(res.ConnectedPeers))
	for _, p := range res.ConnectedPeers {
		peers = append(peers, p.toDomain())
	}
	return peers, nil
}

// GetTipInfo returns the node's tip summary.
func (c *Client) GetTipInfo(ctx context.Context) (*domain.TipInfo, error) {
	var res *tipInfo
	if err := c.call(ctx, "getTipInfo", &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, malformed("getTipInfo", "empty response")
	}
	return &domain.TipInfo{
		Metadata:            res.Metadata.toDomain(),
		InitialSyncAchieved: res.InitialSyncAchieved,
	}, nil
}

// GetSyncProgress returns the node's sync progress.
func (c *Client) GetSyncProgress(ctx context.Context) (*domain.SyncProgress, error) {
	var res *syncProgress
	if err := c.call(ctx, "getSyncProgress", &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, malformed("getSyncProgress", "empty response")
	}
	return &domain.SyncProgress{
		Phase:                 res.phase(),
		InitialConnectedPeers: res.InitialConnectedPeers,
		LocalHeight:           res.LocalHeight,
		TipHeight:             res.TipHeight,
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}
