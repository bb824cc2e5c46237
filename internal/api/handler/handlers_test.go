package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/valuelab/fundpipe/internal/api/middleware"
	"github.com/valuelab/fundpipe/internal/api/response"
	"github.com/valuelab/fundpipe/internal/backtest"
	"github.com/valuelab/fundpipe/internal/cache"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/fund"
	"github.com/valuelab/fundpipe/internal/sentiment"
)

type stubCharts struct {
	payloads map[string]json.RawMessage
}

func (s *stubCharts) FetchChart(ctx context.Context, ticker string) (json.RawMessage, error) {
	payload, ok := s.payloads[ticker]
	if !ok {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no payload for %s", ticker))
	}
	return payload, nil
}

type noSnapshots struct{}

func (noSnapshots) Put(ctx context.Context, snap *core.RawSnapshot) error { return nil }
func (noSnapshots) Latest(ctx context.Context, ticker, org string, notBefore time.Time) (*core.RawSnapshot, error) {
	return nil, nil
}

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, identity *core.Identity, requiredRole string) error {
	if identity == nil {
		return core.ErrUnauthorized
	}
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, event core.AuditEvent) error { return nil }

func chartPayload(prices ...float64) json.RawMessage {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	ts, ps := "", ""
	for i, p := range prices {
		if i > 0 {
			ts += ","
			ps += ","
		}
		ts += fmt.Sprintf("%d", base.AddDate(0, i, 0).Unix())
		ps += fmt.Sprintf("%v", p)
	}
	return json.RawMessage(fmt.Sprintf(
		`{"chart":{"result":[{"timestamp":[%s],"indicators":{"adjclose":[{"adjclose":[%s]}]}}]}}`, ts, ps))
}

func newService() *fund.Service {
	charts := &stubCharts{payloads: map[string]json.RawMessage{
		"VTSAX": chartPayload(100, 110, 99),
		"SPY":   chartPayload(100, 105, 101),
	}}
	return fund.NewService(fund.Deps{
		Provider:  charts,
		Cache:     cache.NewMemory(),
		Snapshots: noSnapshots{},
		Authz:     allowAll{},
		Audit:     nopAudit{},
	}, fund.Config{})
}

func asClient(req *http.Request) *http.Request {
	ident := &core.Identity{ID: "u1", Role: core.RoleClient, OrganizationID: "org1"}
	return req.WithContext(middleware.WithIdentity(req.Context(), ident))
}

func TestFundHandler_Returns_OK(t *testing.T) {
	h := NewFundHandler(newService(), nil)

	req := asClient(httptest.NewRequest("GET", "/fund/VTSAX", nil))
	req.SetPathValue("ticker", "VTSAX")
	w := httptest.NewRecorder()

	h.Returns(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	var body struct {
		Series  []map[string]any `json:"series"`
		Metrics map[string]any   `json:"metrics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body.Series) != 3 {
		t.Errorf("series length = %d, want 3", len(body.Series))
	}
	for _, key := range []string{"var", "es", "beta", "sharpe"} {
		if _, ok := body.Metrics[key]; !ok {
			t.Errorf("metrics missing %q: %v", key, body.Metrics)
		}
	}
}

func TestFundHandler_Returns_FailureCollapsesTo500(t *testing.T) {
	h := NewFundHandler(newService(), nil)

	// Unknown ticker: the provider fails, the handler reports 500.
	req := asClient(httptest.NewRequest("GET", "/fund/GHOST", nil))
	req.SetPathValue("ticker", "GHOST")
	w := httptest.NewRecorder()

	h.Returns(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body response.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestFundHandler_Returns_NoIdentity500(t *testing.T) {
	h := NewFundHandler(newService(), nil)

	req := httptest.NewRequest("GET", "/fund/VTSAX", nil)
	req.SetPathValue("ticker", "VTSAX")
	w := httptest.NewRecorder()

	h.Returns(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing identity, got %d", w.Code)
	}
}

func newAnalyticsHandler() *AnalyticsHandler {
	svc := newService()
	return NewAnalyticsHandler(svc, backtest.New(svc), backtest.Defaults(), nil, nil)
}

func TestAnalyticsHandler_Backtest_OK(t *testing.T) {
	h := newAnalyticsHandler()

	body, _ := json.Marshal(BacktestRequest{Ticker: "VTSAX", Strategy: "buy_and_hold"})
	req := asClient(httptest.NewRequest("POST", "/api/backtest", bytes.NewReader(body)))
	w := httptest.NewRecorder()

	h.Backtest(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var result backtest.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if result.FinalValue <= 0 {
		t.Errorf("FinalValue = %v", result.FinalValue)
	}
}

func TestAnalyticsHandler_Backtest_UnknownStrategy(t *testing.T) {
	h := newAnalyticsHandler()

	body, _ := json.Marshal(BacktestRequest{Ticker: "VTSAX", Strategy: "moonshot"})
	req := asClient(httptest.NewRequest("POST", "/api/backtest", bytes.NewReader(body)))
	w := httptest.NewRecorder()

	h.Backtest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyticsHandler_Backtest_BadBody(t *testing.T) {
	h := newAnalyticsHandler()

	req := asClient(httptest.NewRequest("POST", "/api/backtest", bytes.NewReader([]byte("{"))))
	w := httptest.NewRecorder()

	h.Backtest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyticsHandler_Simulate_OK(t *testing.T) {
	h := newAnalyticsHandler()

	body, _ := json.Marshal(SimulateRequest{Ticker: "VTSAX", Paths: 3, Years: 1})
	req := asClient(httptest.NewRequest("POST", "/api/simulate", bytes.NewReader(body)))
	w := httptest.NewRecorder()

	h.Simulate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var paths [][]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &paths); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(paths))
	}
	if len(paths[0]) != 12 {
		t.Errorf("expected 12 steps, got %d", len(paths[0]))
	}
}

func TestAnalyticsHandler_DCF(t *testing.T) {
	h := newAnalyticsHandler()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"currentEps":1,"growthRate":0,"discountRate":0.1,"terminalGrowthRate":0,"years":1}`, http.StatusOK},
		{"zero years", `{"currentEps":1,"discountRate":0.1,"years":0}`, http.StatusBadRequest},
		{"discount below terminal", `{"currentEps":1,"discountRate":0.02,"terminalGrowthRate":0.03,"years":5}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/valuation/dcf", bytes.NewReader([]byte(tc.body)))
			w := httptest.NewRecorder()

			h.DCF(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body)
			}
			if tc.status == http.StatusOK {
				var body map[string]float64
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("Unmarshal: %v", err)
				}
				if body["value"] <= 0 {
					t.Errorf("value = %v", body["value"])
				}
			}
		})
	}
}

func TestMarketHandler_Funds(t *testing.T) {
	funds := []core.Fund{{Ticker: "VTSAX", Name: "Vanguard Total Stock Market"}}
	h := NewMarketHandler(funds, nil, nil, "test", nil)

	w := httptest.NewRecorder()
	h.Funds(w, httptest.NewRequest("GET", "/api/funds", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []core.Fund
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "VTSAX" {
		t.Errorf("funds = %v", got)
	}
}

func TestMarketHandler_QuoteUnconfigured(t *testing.T) {
	h := NewMarketHandler(nil, nil, nil, "test", nil)

	req := httptest.NewRequest("GET", "/api/quote/VTSAX", nil)
	req.SetPathValue("ticker", "VTSAX")
	w := httptest.NewRecorder()

	h.Quote(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestMarketHandler_SentimentDefaultsNeutral(t *testing.T) {
	h := NewMarketHandler(nil, nil, nil, "test", nil)

	req := httptest.NewRequest("GET", "/api/sentiment/VTSAX", nil)
	req.SetPathValue("ticker", "VTSAX")
	w := httptest.NewRecorder()

	h.Sentiment(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var score sentiment.Score
	if err := json.Unmarshal(w.Body.Bytes(), &score); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if score != sentiment.Neutral {
		t.Errorf("score = %+v, want neutral", score)
	}
}

func TestMarketHandler_Health(t *testing.T) {
	h := NewMarketHandler(nil, nil, nil, "1.2.3", nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "1.2.3" {
		t.Errorf("health = %v", body)
	}
}
