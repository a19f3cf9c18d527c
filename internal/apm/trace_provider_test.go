package apm

import (
	"testing"

	"github.com/mmrrnn/universe/internal/logger"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		endpoint string
		want     Provider
	}{
		{"", EmptyProvider},
		{"console", ConsoleProvider},
		{"http://localhost:9411/api/v2/spans", ZipkinProvider},
		{"https://collector.local:4318", OTLPHTTPProvider},
		{"localhost:4317", OTLPGRPCProvider},
	}

	for _, tt := range tests {
		if got := ParseProvider(tt.endpoint); got != tt.want {
			t.Errorf("ParseProvider(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("x-team=abc, api-key=def,broken,=nokey")

	if len(got) != 2 {
		t.Fatalf("expected 2 headers, got %v", got)
	}
	if got["x-team"] != "abc" || got["api-key"] != "def" {
		t.Errorf("unexpected headers: %v", got)
	}
}

func TestNewTraceProvider_EmptyByDefault(t *testing.T) {
	tp := NewTraceProvider(logger.NewNop())
	if _, ok := tp.(emptyProvider); !ok {
		t.Fatalf("expected empty provider, got %T", tp)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("unexpected stop error: %v", err)
	}
}
