// Package xmrig runs the xmrig CPU miner and reads its HTTP API.
package xmrig

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmrrnn/universe/business/miner/app"
	"github.com/mmrrnn/universe/business/miner/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/circuitbreaker"
	"github.com/mmrrnn/universe/internal/httpclient"
	"github.com/mmrrnn/universe/internal/logger"
)

const tracerName = "github.com/mmrrnn/universe/business/miner/infra/xmrig"

type summaryResponse struct {
	Hashrate struct {
		Total []*float64 `json:"total"`
	} `json:"hashrate"`
	Connection struct {
		Uptime uint64 `json:"uptime"`
	} `json:"connection"`
}

// ClientConfig holds the miner API settings.
type ClientConfig struct {
	Host    string
	Port    int
	Token   string
	Timeout time.Duration
}

// Client implements app.SummaryClient over the xmrig HTTP API.
type Client struct {
	http   httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

var _ app.SummaryClient = (*Client)(nil)

// NewClient creates an API client for a miner listening on cfg.Port.
func NewClient(cfg ClientConfig, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	base := []httpclient.ClientOption{
		httpclient.WithProviderName("xmrig"),
		httpclient.WithBaseURL("http://" + cfg.Host + ":" + strconv.Itoa(cfg.Port)),
		httpclient.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.Token != "" {
		base = append(base, httpclient.WithBearerToken(cfg.Token))
	}
	opts = append(base, opts...)

	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:   hc,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("xmrig")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	c.cb = circuitbreaker.New[*httpclient.Response](cbCfg)

	return c, nil
}

// Summary reads GET /2/summary.
func (c *Client) Summary(ctx context.Context) (domain.Summary, error) {
	ctx, span := c.tracer.Start(ctx, "xmrig.summary")
	defer span.End()

	var res summaryResponse
	_, err := c.cb.Execute(func() (*httpclient.Response, error) {
		return c.http.NewRequest().SetResult(&res).Get(ctx, "/2/summary")
	})
	if err != nil {
		code := apperror.CodeMinerAPIError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			code = apperror.CodeCircuitOpen
		}
		appErr := apperror.New(code, apperror.WithCause(err), apperror.WithContext("/2/summary"))
		span.RecordError(appErr)
		span.SetStatus(codes.Error, "summary failed")
		return domain.Summary{}, appErr
	}

	span.SetStatus(codes.Ok, "fetched")
	return domain.Summary{
		Total:            res.Hashrate.Total,
		ConnectionUptime: res.Connection.Uptime,
	}, nil
}
