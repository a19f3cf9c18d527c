// Package events implements the outbound frontend event bounded context.
package events

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/mmrrnn/universe/business/events/app"
	eventsDI "github.com/mmrrnn/universe/business/events/di"
	"github.com/mmrrnn/universe/business/events/infra"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/monolith"
	"github.com/mmrrnn/universe/internal/wsconn"
	"github.com/mmrrnn/universe/pkg/ui"
)

// Module implements the events bounded context.
type Module struct{}

// RegisterServices registers all events services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, eventsDI.Hub, func(sr di.ServiceRegistry) *wsconn.Hub {
		log := sr.Get("logger").(logger.LoggerInterface)
		return wsconn.New(wsconn.DefaultConfig("frontend-events"), log)
	})

	di.RegisterToken(c, eventsDI.Emitter, func(sr di.ServiceRegistry) *app.Emitter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		sinks := []app.Sink{infra.NewWebSocketSink(eventsDI.GetHub(sr))}
		if cfg.Events.LogEvents {
			sinks = append(sinks, infra.NewLogSink(log))
		}
		if cfg.App.TUIMode {
			sinks = append(sinks, infra.NewTUISink(ui.Send))
		}

		emitter, err := app.NewEmitter(log, sinks...)
		if err != nil {
			panic("failed to create event emitter: " + err.Error())
		}
		return emitter
	})

	return nil
}

// Startup serves the websocket hub when an address is configured.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	hub := eventsDI.GetHub(mono.Services())

	mono.OnShutdown("events.hub", func(context.Context) error {
		hub.Close()
		return nil
	})

	if cfg.Events.WebSocketAddr == "" {
		log.Info(ctx, "events module started", "websocket", "disabled")
		return nil
	}

	ln, err := net.Listen("tcp", cfg.Events.WebSocketAddr)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext(cfg.Events.WebSocketAddr))
	}

	mux := http.NewServeMux()
	mux.Handle("/events", hub)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	mono.Go(func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "event hub server failed", "error", err)
		}
	})
	mono.OnShutdown("events.server", srv.Shutdown)

	log.Info(ctx, "events module started", "websocket", ln.Addr().String())
	return nil
}
