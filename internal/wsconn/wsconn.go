// Package wsconn provides a WebSocket broadcast hub for local UI clients.
package wsconn

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

// Config holds hub configuration.
type Config struct {
	Name         string
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
	// OriginPatterns are passed to websocket.Accept.
	OriginPatterns []string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:           name,
		SendBuffer:     64,
		WriteTimeout:   5 * time.Second,
		PingInterval:   30 * time.Second,
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*", "tauri.localhost"},
	}
}

type subscriber struct {
	msgs chan []byte
	// closeSlow drops a subscriber that cannot keep up.
	closeSlow func()
}

// Hub fans text messages out to every connected client.
type Hub struct {
	config Config
	log    logger.LoggerInterface

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      atomic.Bool

	dropped atomic.Int64
}

// New creates a hub.
func New(config Config, log logger.LoggerInterface) *Hub {
	if config.SendBuffer <= 0 {
		config.SendBuffer = 64
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		config:      config,
		log:         log,
		subscribers: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and streams broadcasts until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.config.OriginPatterns,
	})
	if err != nil {
		h.log.Warn(r.Context(), "websocket accept failed",
			"hub", h.config.Name,
			"error", apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithCause(err)))
		return
	}

	err = h.serve(r.Context(), conn)
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil && r.Context().Err() == nil {
		h.log.Debug(r.Context(), "websocket client disconnected", "hub", h.config.Name, "error", err)
	}
}

func (h *Hub) serve(ctx context.Context, conn *websocket.Conn) error {
	var once sync.Once
	s := &subscriber{
		msgs: make(chan []byte, h.config.SendBuffer),
	}
	s.closeSlow = func() {
		once.Do(func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		})
	}

	h.add(s)
	defer h.remove(s)

	// Clients never send; CloseRead handles control frames and cancels on close.
	ctx = conn.CloseRead(ctx)

	var pingC <-chan time.Time
	if h.config.PingInterval > 0 {
		ticker := time.NewTicker(h.config.PingInterval)
		defer ticker.Stop()
		pingC = ticker.C
	}

	for {
		select {
		case msg, ok := <-s.msgs:
			if !ok {
				return conn.Close(websocket.StatusGoingAway, "hub closed")
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return err
			}
		case <-pingC:
			pctx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Broadcast queues msg for every client. It never blocks; clients whose
// buffers are full are disconnected.
func (h *Hub) Broadcast(msg []byte) {
	if h.closed.Load() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subscribers {
		select {
		case s.msgs <- msg:
		default:
			h.dropped.Add(1)
			go s.closeSlow()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Closed reports whether Close was called.
func (h *Hub) Closed() bool {
	return h.closed.Load()
}

// Dropped returns how many clients were disconnected for being slow.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close disconnects every client. Safe to call more than once.
func (h *Hub) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subscribers {
		close(s.msgs)
		delete(h.subscribers, s)
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		close(s.msgs)
		return
	}
	h.subscribers[s] = struct{}{}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, s)
	h.mu.Unlock()
}
