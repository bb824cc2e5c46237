package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/valuelab/fundpipe/internal/api/handler"
	"github.com/valuelab/fundpipe/internal/backtest"
	"github.com/valuelab/fundpipe/internal/cache"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/fund"
	"github.com/valuelab/fundpipe/internal/metrics"
)

type emptyCharts struct{}

func (emptyCharts) FetchChart(ctx context.Context, ticker string) (json.RawMessage, error) {
	return nil, core.ErrNoData
}

type noSnapshots struct{}

func (noSnapshots) Put(ctx context.Context, snap *core.RawSnapshot) error { return nil }
func (noSnapshots) Latest(ctx context.Context, ticker, org string, notBefore time.Time) (*core.RawSnapshot, error) {
	return nil, nil
}

type denyAll struct{}

func (denyAll) Authorize(ctx context.Context, identity *core.Identity, requiredRole string) error {
	return core.ErrUnauthorized
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, event core.AuditEvent) error { return nil }

func newTestServer(reg *metrics.Registry) *Server {
	svc := fund.NewService(fund.Deps{
		Provider:  emptyCharts{},
		Cache:     cache.NewMemory(),
		Snapshots: noSnapshots{},
		Authz:     denyAll{},
		Audit:     nopAudit{},
		Metrics:   reg,
	}, fund.Config{})

	h := Handlers{
		Fund:      handler.NewFundHandler(svc, nil),
		Analytics: handler.NewAnalyticsHandler(svc, backtest.New(svc), backtest.Defaults(), reg, nil),
		Market:    handler.NewMarketHandler(nil, nil, nil, "test", nil),
		Metrics:   reg,
	}
	return NewServer(Config{Host: "127.0.0.1", Port: 0}, h, nil)
}

func TestServer_HealthRoute(t *testing.T) {
	s := newTestServer(nil)

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(nil)

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServer_FundRouteDenied(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest("GET", "/fund/VTSAX", nil)
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-User-Role", "client")
	req.Header.Set("X-Org-Id", "org1")
	w := httptest.NewRecorder()

	s.httpServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("expected error body, got %v", body)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(metrics.NewRegistry())

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from metrics endpoint, got %d", w.Code)
	}
}

func TestServer_Shutdown(t *testing.T) {
	s := newTestServer(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
