package app

import (
	"path/filepath"
	"testing"

	"github.com/valuelab/fundpipe/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Snapshots.Path = filepath.Join(t.TempDir(), "snapshots")
	return cfg
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if a.Service == nil {
		t.Error("expected fund service")
	}
	if a.Backtests == nil {
		t.Error("expected backtest engine")
	}
	if a.Strategies == nil {
		t.Error("expected strategy registry")
	}
	if a.Metrics == nil {
		t.Error("metrics enabled by default")
	}
	if a.Quotes != nil {
		t.Error("quotes should be nil when disabled")
	}
	if a.Sentiment != nil {
		t.Error("sentiment should be nil when disabled")
	}
}

func TestNew_OptionalProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Quotes.Enabled = true
	cfg.Quotes.APIKey = "k"
	cfg.Sentiment.Enabled = true
	cfg.Sentiment.Endpoint = "http://127.0.0.1:1/sentiment"

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Quotes == nil {
		t.Error("expected quotes client")
	}
	if a.Sentiment == nil {
		t.Error("expected sentiment client")
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Metrics != nil {
		t.Error("expected nil metrics registry when disabled")
	}
}

func TestFunds(t *testing.T) {
	cfg := testConfig(t)
	cfg.Funds = []config.FundConfig{{Ticker: "VTSAX", Name: "Vanguard Total Stock Market"}}

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	funds := a.Funds()
	if len(funds) != 1 || funds[0].Ticker != "VTSAX" {
		t.Errorf("Funds = %v", funds)
	}
}

func TestServer(t *testing.T) {
	a, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Server("test") == nil {
		t.Error("expected server")
	}
}
