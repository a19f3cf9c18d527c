// Package app contains the outbound event emitter and its ports.
package app

import (
	"context"

	"github.com/mmrrnn/universe/business/events/domain"
)

// Sink delivers an event to one destination. data is the JSON encoding of
// event; sinks that render typed payloads may ignore it.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event domain.Event, data []byte) error
}
