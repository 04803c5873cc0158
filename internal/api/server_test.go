package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evlens/evdash/internal/api"
	"github.com/evlens/evdash/internal/config"
	"github.com/evlens/evdash/internal/store"
	"github.com/evlens/evdash/internal/testutil"
)

func newTestServer(t *testing.T, apiKey string) (*api.Server, *store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)
	cfg := &config.Config{
		Server: config.ServerConfig{APIKey: apiKey},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewServer(cfg, st, logger), st
}

func doRequest(t *testing.T, srv *api.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}
}

func TestAuthRequiredWhenKeyConfigured(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = doRequest(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Errorf("X-API-Key request = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = doRequest(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Bearer request = %d, want 200", rec.Code)
	}
}

func TestAuthRejectsWrongKey(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key request = %d, want 401", rec.Code)
	}
}

func TestHealthSkipsAuth(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health with auth configured = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d, want 200", rec.Code)
	}
}
