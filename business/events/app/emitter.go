package app

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmrrnn/universe/business/events/domain"
	hwdomain "github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	nodedomain "github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/logger"
)

const meterName = "github.com/mmrrnn/universe/business/events/app"

// Emitter publishes frontend events to every sink. Emission is fire and
// forget: failures are logged and counted, never returned.
type Emitter struct {
	sinks  []Sink
	logger logger.LoggerInterface

	emitted metric.Int64Counter
	failed  metric.Int64Counter
}

// NewEmitter creates an emitter over sinks.
func NewEmitter(log logger.LoggerInterface, sinks ...Sink) (*Emitter, error) {
	e := &Emitter{sinks: sinks, logger: log}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Emitter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.emitted, err = meter.Int64Counter("events_emitted_total",
		metric.WithDescription("Frontend events published per sink"))
	if err != nil {
		return err
	}

	e.failed, err = meter.Int64Counter("events_failed_total",
		metric.WithDescription("Frontend events that could not be encoded or delivered"))
	return err
}

// Emit wraps payload in the event envelope and publishes it.
func (e *Emitter) Emit(ctx context.Context, eventType domain.EventType, payload any) {
	event := domain.Event{EventType: eventType, Payload: payload}
	data, err := json.Marshal(event)
	if err != nil {
		e.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", string(eventType))))
		e.logger.Error(ctx, "failed to encode event", "event_type", eventType, "error", err)
		return
	}

	for _, s := range e.sinks {
		attrs := metric.WithAttributes(
			attribute.String("event_type", string(eventType)),
			attribute.String("sink", s.Name()))

		if err := s.Publish(ctx, event, data); err != nil {
			e.failed.Add(ctx, 1, attrs)
			e.logger.Error(ctx, "failed to emit event",
				"event_type", eventType,
				"sink", s.Name(),
				"error", err)
			continue
		}
		e.emitted.Add(ctx, 1, attrs)
	}
}

func (e *Emitter) EmitWalletAddressUpdate(ctx context.Context, base58, emoji string) {
	e.Emit(ctx, domain.WalletAddressUpdate, domain.WalletAddressPayload{Base58: base58, Emoji: emoji})
}

func (e *Emitter) EmitBaseNodeUpdate(ctx context.Context, status nodedomain.BaseNodeStatus) {
	e.Emit(ctx, domain.BaseNodeUpdate, status)
}

func (e *Emitter) EmitGpuDevicesUpdate(ctx context.Context, devices []hwdomain.PublicDeviceProperties) {
	if devices == nil {
		devices = []hwdomain.PublicDeviceProperties{}
	}
	e.Emit(ctx, domain.GpuDevicesUpdate, devices)
}

func (e *Emitter) EmitCPUMiningUpdate(ctx context.Context, status minerdomain.CPUMinerStatus) {
	e.Emit(ctx, domain.CpuMiningUpdate, status)
}

func (e *Emitter) EmitGPUMiningUpdate(ctx context.Context, status minerdomain.GPUMinerStatus) {
	e.Emit(ctx, domain.GpuMiningUpdate, status)
}

func (e *Emitter) EmitConnectedPeersUpdate(ctx context.Context, peers []string) {
	if peers == nil {
		peers = []string{}
	}
	e.Emit(ctx, domain.ConnectedPeersUpdate, peers)
}

// EmitNewBlockHeight announces a new tip with no coinbase and an empty balance.
func (e *Emitter) EmitNewBlockHeight(ctx context.Context, height uint64) {
	e.EmitNewBlock(ctx, domain.NewBlockHeightPayload{BlockHeight: height})
}

func (e *Emitter) EmitNewBlock(ctx context.Context, payload domain.NewBlockHeightPayload) {
	e.Emit(ctx, domain.NewBlockHeight, payload)
}
