package infra

import (
	"context"

	"github.com/mmrrnn/universe/business/events/domain"
	"github.com/mmrrnn/universe/internal/logger"
)

// LogSink writes every event to the debug log.
type LogSink struct {
	logger logger.LoggerInterface
}

func NewLogSink(log logger.LoggerInterface) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(ctx context.Context, event domain.Event, data []byte) error {
	s.logger.Debug(ctx, domain.ChannelName,
		"event_type", event.EventType,
		"payload", string(data))
	return nil
}
