package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmrrnn/universe/internal/logger"
)

func fixed(level Level) CheckFunc {
	return func(context.Context) Check { return Check{Level: level} }
}

func TestHealth_Aggregation(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Level
		wantStatus string
		wantCode   int
		wantReady  int
	}{
		{"all healthy", map[string]Level{"node": LevelHealthy, "miner": LevelHealthy}, "ok", http.StatusOK, http.StatusOK},
		{"warning degrades", map[string]Level{"node": LevelWarning, "miner": LevelHealthy}, "degraded", http.StatusOK, http.StatusOK},
		{"unhealthy fails", map[string]Level{"node": LevelWarning, "miner": LevelUnhealthy}, "unhealthy", http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(0, "test", logger.NewNop())
			for name, lvl := range tt.checks {
				s.RegisterCheck(name, fixed(lvl))
			}
			h := s.Handler()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, rec.Code)
			}
			var st Status
			if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if st.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, st.Status)
			}
			if len(st.Checks) != len(tt.checks) {
				t.Errorf("expected %d checks, got %d", len(tt.checks), len(st.Checks))
			}

			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.wantReady {
				t.Errorf("expected ready code %d, got %d", tt.wantReady, rec.Code)
			}
		})
	}
}

func TestHealth_Live(t *testing.T) {
	s := NewServer(0, "test", logger.NewNop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "alive" {
		t.Errorf("unexpected live response: %d %q", rec.Code, rec.Body.String())
	}
}
