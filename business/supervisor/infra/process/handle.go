// Package process runs worker binaries as child processes and exposes them
// to the supervisor as process instances.
package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

// EventKind classifies a process event.
type EventKind int

const (
	EventStdout EventKind = iota
	EventStderr
	EventExit
)

// Event is one line of output or the final exit of the process.
type Event struct {
	Kind     EventKind
	Line     string
	ExitCode int
}

// Config describes how to launch a worker binary.
type Config struct {
	Name        string
	Path        string
	Args        []string
	Env         []string // appended to the current environment
	Dir         string
	StopGrace   time.Duration // time between interrupt and kill
	EventBuffer int
	LogOutput   bool // forward output lines to the logger at debug level
}

// Handle is a running child process. It implements the supervisor's
// process instance port.
type Handle struct {
	config Config
	logger logger.LoggerInterface
	cmd    *exec.Cmd

	events chan Event
	exited chan struct{}

	mu       sync.Mutex
	exitCode int
	waitErr  error
	stopping bool
}

// Start launches the binary described by cfg.
func Start(ctx context.Context, cfg Config, log logger.LoggerInterface) (*Handle, error) {
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = 5 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 256
	}

	cmd := exec.Command(cfg.Path, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.WaitDelay = 500 * time.Millisecond

	h := &Handle{
		config: cfg,
		logger: log,
		cmd:    cmd,
		events: make(chan Event, cfg.EventBuffer),
		exited: make(chan struct{}),
	}
	cmd.Stdout = &lineWriter{h: h, kind: EventStdout}
	cmd.Stderr = &lineWriter{h: h, kind: EventStderr}

	if err := cmd.Start(); err != nil {
		return nil, apperror.New(apperror.CodeProcessSpawnFailed,
			apperror.WithCause(err),
			apperror.WithContext(cfg.Name+": "+cfg.Path))
	}

	log.Info(ctx, "process spawned", "name", cfg.Name, "pid", cmd.Process.Pid, "path", cfg.Path)

	go h.wait()

	return h, nil
}

func (h *Handle) wait() {
	err := h.cmd.Wait()

	code := 0
	if h.cmd.ProcessState != nil {
		code = h.cmd.ProcessState.ExitCode()
	}

	h.mu.Lock()
	h.exitCode = code
	h.waitErr = err
	h.mu.Unlock()

	h.emit(Event{Kind: EventExit, ExitCode: code})
	close(h.exited)
}

func (h *Handle) emit(ev Event) {
	select {
	case h.events <- ev:
	default:
		// reader is behind; output is best effort
	}
}

// Events returns the output and exit stream. The channel is never closed; use Done.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// Done is closed once the process has exited and its output is drained.
func (h *Handle) Done() <-chan struct{} {
	return h.exited
}

// Ping reports whether the process is still running.
func (h *Handle) Ping() bool {
	select {
	case <-h.exited:
		return false
	default:
		return true
	}
}

// PID returns the OS process id.
func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// ExitCode returns the exit code, or -1 while the process is running.
func (h *Handle) ExitCode() int {
	if h.Ping() {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Stop interrupts the process, waits up to the stop grace, then kills it.
// A process that already exited on its own with a non-zero code reports
// that exit as an error.
func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	alreadyStopping := h.stopping
	h.stopping = true
	h.mu.Unlock()

	select {
	case <-h.exited:
		return h.exitResult(alreadyStopping)
	default:
	}

	if err := h.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		h.logger.Debug(ctx, "interrupt failed, killing", "name", h.config.Name, "error", err)
		_ = h.cmd.Process.Kill()
	}

	grace := time.NewTimer(h.config.StopGrace)
	defer grace.Stop()

	select {
	case <-h.exited:
		return nil
	case <-grace.C:
		h.logger.Warn(ctx, "process did not stop gracefully, killing", "name", h.config.Name, "pid", h.PID())
	case <-ctx.Done():
	}

	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return apperror.New(apperror.CodeProcessExitError,
			apperror.WithCause(err),
			apperror.WithContext(h.config.Name+": kill"))
	}

	select {
	case <-h.exited:
		return nil
	case <-time.After(2 * time.Second):
		return apperror.New(apperror.CodeProcessExitError,
			apperror.WithContext(h.config.Name+": process did not exit after kill"))
	}
}

func (h *Handle) exitResult(stoppedByUs bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if stoppedByUs || h.exitCode == 0 {
		return nil
	}
	return apperror.New(apperror.CodeProcessExitError,
		apperror.WithCause(h.waitErr),
		apperror.WithContext(h.config.Name+" exited with code "+strconv.Itoa(h.exitCode)))
}

// lineWriter splits output into lines and emits them as events.
type lineWriter struct {
	h    *Handle
	kind EventKind
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]

		if w.h.config.LogOutput {
			w.h.logger.Debug(context.Background(), line, "name", w.h.config.Name, "stream", streamName(w.kind))
		}
		w.h.emit(Event{Kind: w.kind, Line: line})
	}
	return len(p), nil
}

func streamName(k EventKind) string {
	if k == EventStderr {
		return "stderr"
	}
	return "stdout"
}
