package process

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

func startShell(t *testing.T, script string, grace time.Duration) *Handle {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	h, err := Start(context.Background(), Config{
		Name:      "test",
		Path:      "sh",
		Args:      []string{"-c", script},
		StopGrace: grace,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return h
}

func waitExit(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}
}

func TestHandle_OutputAndStop(t *testing.T) {
	h := startShell(t, "echo ready; sleep 30", time.Second)

	select {
	case ev := <-h.Events():
		if ev.Kind != EventStdout || ev.Line != "ready" {
			t.Errorf("unexpected first event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no output")
	}

	if !h.Ping() {
		t.Fatal("expected running")
	}
	if h.PID() <= 0 {
		t.Errorf("expected pid, got %d", h.PID())
	}

	if err := h.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.Ping() {
		t.Error("expected exited after stop")
	}

	// stopping twice is fine
	if err := h.Stop(context.Background()); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestHandle_UnexpectedExitReportsError(t *testing.T) {
	h := startShell(t, "exit 3", time.Second)
	waitExit(t, h)

	if h.Ping() {
		t.Fatal("expected not running")
	}
	if got := h.ExitCode(); got != 3 {
		t.Errorf("expected exit code 3, got %d", got)
	}

	err := h.Stop(context.Background())
	if apperror.GetCode(err) != apperror.CodeProcessExitError {
		t.Errorf("expected exit error code, got %v", err)
	}
}

func TestHandle_CleanExit(t *testing.T) {
	h := startShell(t, "exit 0", time.Second)
	waitExit(t, h)

	if err := h.Stop(context.Background()); err != nil {
		t.Errorf("clean exit should stop without error, got %v", err)
	}
}

func TestHandle_KillsAfterGrace(t *testing.T) {
	h := startShell(t, `trap "" INT; while true; do sleep 0.05; done`, 100*time.Millisecond)

	start := time.Now()
	if err := h.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.Ping() {
		t.Error("expected process killed")
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("stop took too long: %v", elapsed)
	}
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Config{
		Name: "missing",
		Path: "/nonexistent/binary-that-does-not-exist",
	}, logger.NewNop())
	if apperror.GetCode(err) != apperror.CodeProcessSpawnFailed {
		t.Errorf("expected spawn failure code, got %v", err)
	}
}
