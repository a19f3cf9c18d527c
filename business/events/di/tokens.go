// Package di contains dependency injection tokens for the events context.
package di

import (
	"github.com/mmrrnn/universe/business/events/app"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/wsconn"
)

// Public service tokens - exposed to other modules
var (
	Emitter = di.NewToken[*app.Emitter]("events.Emitter")
)

// Private dependency tokens - internal to events module
var (
	Hub = di.NewToken[*wsconn.Hub]("events:hub")
)

func GetEmitter(c di.ServiceRegistry) *app.Emitter {
	return di.GetToken(c, Emitter)
}

func GetHub(c di.ServiceRegistry) *wsconn.Hub {
	return di.GetToken(c, Hub)
}
