package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valuelab/fundpipe/internal/core"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.Provider.Benchmark != "SPY" {
		t.Errorf("benchmark = %q", cfg.Provider.Benchmark)
	}
	if cfg.Provider.Retries != 3 {
		t.Errorf("retries = %d", cfg.Provider.Retries)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Snapshots.Freshness != 24*time.Hour {
		t.Errorf("freshness = %v", cfg.Snapshots.Freshness)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9090
provider:
  base_url: https://example.com/v8/finance
  benchmark: VOO
  retries: 2
  backoff: 250ms
cache:
  type: memory
  ttl: 1h
snapshots:
  type: localfs
  path: /tmp/snaps
directory:
  users:
    - id: mgr
      role: admin
      organization_id: org1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Provider.Benchmark != "VOO" {
		t.Errorf("benchmark = %q", cfg.Provider.Benchmark)
	}
	if cfg.Provider.Backoff != 250*time.Millisecond {
		t.Errorf("backoff = %v", cfg.Provider.Backoff)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if len(cfg.Directory.Users) != 1 || cfg.Directory.Users[0].Role != "admin" {
		t.Errorf("users = %+v", cfg.Directory.Users)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_QUOTES_KEY", "secret123")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
quotes:
  enabled: true
  api_key: ${TEST_QUOTES_KEY}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Quotes.APIKey != "secret123" {
		t.Errorf("api_key = %q", cfg.Quotes.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"missing base url", func(c *Config) { c.Provider.BaseURL = "" }, core.ErrConfigMissing},
		{"negative retries", func(c *Config) { c.Provider.Retries = -1 }, core.ErrConfigInvalid},
		{"unknown cache type", func(c *Config) { c.Cache.Type = "memcached" }, core.ErrConfigInvalid},
		{"redis without addr", func(c *Config) { c.Cache.Type = "redis" }, core.ErrConfigMissing},
		{"localfs without path", func(c *Config) { c.Snapshots.Path = "" }, core.ErrConfigMissing},
		{"unknown snapshots type", func(c *Config) { c.Snapshots.Type = "tape" }, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Snapshots.Type = "s3" }, core.ErrConfigMissing},
		{"confidence out of range", func(c *Config) { c.Risk.Confidence = 1.5 }, core.ErrConfigInvalid},
		{"quotes without key", func(c *Config) { c.Quotes.Enabled = true }, core.ErrConfigMissing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
