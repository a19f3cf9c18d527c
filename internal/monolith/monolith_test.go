package monolith

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/di"
	"github.com/mmrrnn/universe/internal/health"
	"github.com/mmrrnn/universe/internal/logger"
)

type recordingModule struct {
	registered bool
	started    bool
}

func (m *recordingModule) RegisterServices(c di.Container) error {
	m.registered = true
	c.Register("recording", m)
	return nil
}

func (m *recordingModule) Startup(_ context.Context, mono Monolith) error {
	if mono.Services().Get("recording") != m {
		return errors.New("service not resolvable at startup")
	}
	m.started = true
	return nil
}

func newTestApp() *app {
	log := logger.NewNop()
	return New(&config.Config{}, log, health.NewServer(0, "test", log))
}

func TestApp_RegisterAndStart(t *testing.T) {
	a := newTestApp()
	m := &recordingModule{}

	if err := a.RegisterModules(m); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.StartModules(context.Background(), m); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !m.registered || !m.started {
		t.Errorf("module lifecycle incomplete: %+v", m)
	}
}

func TestApp_CloseRunsHooksInReverse(t *testing.T) {
	a := newTestApp()

	var order []string
	a.OnShutdown("first", func(context.Context) error { order = append(order, "first"); return nil })
	a.OnShutdown("second", func(context.Context) error { order = append(order, "second"); return errors.New("boom") })

	err := a.Close(context.Background())
	if err == nil {
		t.Error("expected hook error to surface")
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("unexpected hook order %v", order)
	}
}

func TestApp_CloseWaitsForGoroutines(t *testing.T) {
	a := newTestApp()
	release := make(chan struct{})
	a.Go(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline while goroutine runs, got %v", err)
	}

	close(release)
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("expected clean close, got %v", err)
	}
}
