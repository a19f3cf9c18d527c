package wsconn

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/mmrrnn/universe/internal/logger"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestHub() *Hub {
	cfg := DefaultConfig("test")
	cfg.PingInterval = 0
	cfg.OriginPatterns = nil
	return New(cfg, logger.NewNop())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	defer a.CloseNow()
	b := dial(t, srv)
	defer b.CloseNow()

	waitClients(t, hub, 2)

	hub.Broadcast([]byte(`{"event_type":"NewBlockHeight","payload":42}`))

	for i, conn := range []*websocket.Conn{a, b} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		typ, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		if typ != websocket.MessageText {
			t.Errorf("client %d: expected text message, got %v", i, typ)
		}
		if !strings.Contains(string(data), "NewBlockHeight") {
			t.Errorf("client %d: unexpected payload %s", i, data)
		}
	}
}

func TestHub_ClientLeaving(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitClients(t, hub, 0)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.CloseNow()
	waitClients(t, hub, 1)

	hub.Close()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("expected going-away close, got %v", err)
	}

	hub.Broadcast([]byte("ignored"))
	if hub.Clients() != 0 {
		t.Errorf("expected no clients after close, got %d", hub.Clients())
	}
}
