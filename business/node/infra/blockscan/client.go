// Package blockscan reads canonical chain data from the public block explorer.
package blockscan

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmrrnn/universe/business/node/app"
	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/cache"
	"github.com/mmrrnn/universe/internal/circuitbreaker"
	"github.com/mmrrnn/universe/internal/httpclient"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/ratelimit"
)

const (
	tracerName = "github.com/mmrrnn/universe/business/node/infra/blockscan"
	meterName  = "github.com/mmrrnn/universe/business/node/infra/blockscan"
)

// Config holds configuration for the block explorer client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BlockCacheTTL     time.Duration // cached block hashes live this long
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 2,
		Burst:             3,
		BlockCacheTTL:     10 * time.Minute,
	}
}

type tipResponse struct {
	TipInfo struct {
		Metadata *struct {
			BestBlockHeight uint64 `json:"best_block_height"`
		} `json:"metadata"`
	} `json:"tipInfo"`
}

type blockResponse struct {
	Header *struct {
		Height uint64 `json:"height"`
		Hash   string `json:"hash"`
	} `json:"header"`
}

type clientMetrics struct {
	requests    metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// Client implements app.BlockScanOracle.
type Client struct {
	config  Config
	logger  logger.LoggerInterface
	http    httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[*httpclient.Response]
	blocks  *cache.Cache[uint64, domain.BlockRef]

	tracer  trace.Tracer
	metrics *clientMetrics
}

var _ app.BlockScanOracle = (*Client)(nil)

// New creates a block explorer client.
func New(cfg Config, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Client, error) {
	opts = append([]httpclient.ClientOption{
		httpclient.WithProviderName("blockscan"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	}, opts...)

	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:  cfg,
		logger:  log,
		http:    hc,
		limiter: ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		blocks:  cache.New[uint64, domain.BlockRef](time.Minute),
		tracer:  otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	c.initCircuitBreaker()

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.requests, err = meter.Int64Counter(
		"blockscan_requests_total",
		metric.WithDescription("Block explorer requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	c.metrics.cacheHits, err = meter.Int64Counter(
		"blockscan_cache_hits_total",
		metric.WithDescription("Block explorer cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	c.metrics.cacheMisses, err = meter.Int64Counter(
		"blockscan_cache_misses_total",
		metric.WithDescription("Block explorer cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	return nil
}

func (c *Client) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("blockscan")
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	c.cb = circuitbreaker.New[*httpclient.Response](cfg)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}

	c.metrics.requests.Add(ctx, 1)

	_, err := c.cb.Execute(func() (*httpclient.Response, error) {
		return c.http.NewRequest().SetResult(result).Get(ctx, path)
	})
	if err != nil {
		code := apperror.CodeBlockScanError
		if isOpenState(err) {
			code = apperror.CodeCircuitOpen
		}
		return apperror.New(code,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	return nil
}

func isOpenState(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// BestBlockHeight returns the explorer's chain tip.
func (c *Client) BestBlockHeight(ctx context.Context) (uint64, error) {
	ctx, span := c.tracer.Start(ctx, "blockscan.best_block")
	defer span.End()

	var res tipResponse
	if err := c.get(ctx, "/?json", &res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return 0, err
	}
	if res.TipInfo.Metadata == nil {
		err := apperror.New(apperror.CodeBlockScanError,
			apperror.WithContext("tip response has no metadata"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed")
		return 0, err
	}

	height := res.TipInfo.Metadata.BestBlockHeight
	span.SetAttributes(attribute.Int64("height", int64(height)))
	span.SetStatus(codes.Ok, "fetched")
	return height, nil
}

// BlockAt returns the explorer's block at height. Results are cached.
func (c *Client) BlockAt(ctx context.Context, height uint64) (domain.BlockRef, error) {
	ctx, span := c.tracer.Start(ctx, "blockscan.block",
		trace.WithAttributes(attribute.Int64("height", int64(height))),
	)
	defer span.End()

	if ref, ok := c.blocks.Get(ctx, height); ok {
		c.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return ref, nil
	}
	c.metrics.cacheMisses.Add(ctx, 1)

	var res blockResponse
	if err := c.get(ctx, "/blocks/"+strconv.FormatUint(height, 10)+"?json", &res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return domain.BlockRef{}, err
	}
	if res.Header == nil || res.Header.Hash == "" {
		err := apperror.New(apperror.CodeBlockScanError,
			apperror.WithContext("block response has no header"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed")
		return domain.BlockRef{}, err
	}

	ref := domain.BlockRef{
		Height: res.Header.Height,
		Hash:   strings.ToLower(strings.TrimPrefix(res.Header.Hash, "0x")),
	}
	c.blocks.Set(ctx, height, ref, c.config.BlockCacheTTL)

	span.SetStatus(codes.Ok, "fetched")
	return ref, nil
}

// Close releases the cache.
func (c *Client) Close() {
	c.blocks.Close()
}
