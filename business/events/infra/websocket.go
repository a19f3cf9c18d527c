// Package infra contains event sink implementations.
package infra

import (
	"context"

	"github.com/mmrrnn/universe/business/events/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/wsconn"
)

// WebSocketSink broadcasts encoded events to every connected UI client.
type WebSocketSink struct {
	hub *wsconn.Hub
}

// NewWebSocketSink creates a sink over hub.
func NewWebSocketSink(hub *wsconn.Hub) *WebSocketSink {
	return &WebSocketSink{hub: hub}
}

func (s *WebSocketSink) Name() string { return "websocket" }

func (s *WebSocketSink) Publish(_ context.Context, event domain.Event, data []byte) error {
	if s.hub.Closed() {
		return apperror.New(apperror.CodeWebSocketClosed,
			apperror.WithContext(string(event.EventType)))
	}
	s.hub.Broadcast(data)
	return nil
}
