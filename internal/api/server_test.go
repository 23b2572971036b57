package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/MovePilotApp/MovePilot/internal/store"
)

// failingPingStore wraps the in-memory store with an unreachable ping.
type failingPingStore struct {
	*store.InMemoryStore
}

func (f *failingPingStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealthReportsHealthy(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{reply: "ok"})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", health["status"])
	}
	if health["timestamp"] == "" || health["timestamp"] == nil {
		t.Error("timestamp missing")
	}
}

func TestHealthDegradesWhenStoreUnreachable(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{reply: "ok"})
	srv.st = &failingPingStore{store.NewInMemoryStore()}

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if health["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", health["status"])
	}
	if health["error"] == nil {
		t.Error("error field missing on degraded health")
	}
}

func TestMethodGuards(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{reply: "ok"})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/chat/turn"},
		{http.MethodDelete, "/workflows/moving_services_qualify"},
		{http.MethodGet, "/workflows/moving_services_qualify/submit"},
		{http.MethodGet, "/tasks/refresh"},
		{http.MethodPost, "/tasks/user-1"},
		{http.MethodPost, "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, srv, tt.method, tt.path, "")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
			}
			if rec.Header().Get("Allow") == "" {
				t.Error("Allow header not set")
			}
		})
	}
}

func TestMetricsEndpointServesPrometheus(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{reply: "ok"})

	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "movepilot_") {
		t.Error("metrics exposition is missing movepilot_ counters")
	}
}

func TestWithAddrOverridesDefault(t *testing.T) {
	cfg := Opts{Addr: DefaultAddr}
	WithAddr(":9090")(&cfg)
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
}
