package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLogger_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "universe", func(context.Context) string { return "abc123" })

	log.Info(context.Background(), "node started", "pid", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not json: %v (%q)", err, buf.String())
	}

	if rec["msg"] != "node started" {
		t.Errorf("expected msg %q, got %v", "node started", rec["msg"])
	}
	if rec["service"] != "universe" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["trace_id"] != "abc123" {
		t.Errorf("expected trace_id abc123, got %v", rec["trace_id"])
	}
	if rec["pid"] != float64(42) {
		t.Errorf("expected pid 42, got %v", rec["pid"])
	}
	if _, ok := rec["file"]; !ok {
		t.Error("expected file attribute")
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "universe", nil)

	log.Info(context.Background(), "dropped")
	log.Debug(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	log.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn record")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
