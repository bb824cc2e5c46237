package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valuelab/fundpipe/internal/core"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Funds     []FundConfig    `mapstructure:"funds"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ProviderConfig holds chart-provider settings. Retries is the number of
// retries after the first attempt; Backoff doubles on every attempt.
type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Benchmark string        `mapstructure:"benchmark"`
	Retries   int           `mapstructure:"retries"`
	Backoff   time.Duration `mapstructure:"backoff"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// QuotesConfig holds the real-time quotes provider settings.
type QuotesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// CacheConfig selects the volatile cache backend: "memory" or "redis".
type CacheConfig struct {
	Type  string        `mapstructure:"type"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SnapshotsConfig selects the durable snapshot backend: "localfs" or "s3".
// Freshness is the maximum age of a persisted snapshot still eligible for
// reuse instead of a live re-fetch.
type SnapshotsConfig struct {
	Type      string        `mapstructure:"type"`
	Path      string        `mapstructure:"path"`
	Freshness time.Duration `mapstructure:"freshness"`
	S3        S3Config      `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AuditConfig selects the audit trail sink: "log" or "blob".
type AuditConfig struct {
	Sink string `mapstructure:"sink"`
	Path string `mapstructure:"path"`
}

type SentimentConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// DirectoryConfig holds the static identity fixtures used to resolve
// parent-delegation chains when no external directory is wired.
type DirectoryConfig struct {
	Users []UserConfig `mapstructure:"users"`
}

type UserConfig struct {
	ID             string `mapstructure:"id"`
	Role           string `mapstructure:"role"`
	OrganizationID string `mapstructure:"organization_id"`
	ParentID       string `mapstructure:"parent_id"`
}

type FundConfig struct {
	Ticker string `mapstructure:"ticker"`
	Name   string `mapstructure:"name"`
}

type RiskConfig struct {
	Confidence float64 `mapstructure:"confidence"`
	RiskFree   float64 `mapstructure:"risk_free"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Provider: ProviderConfig{
			BaseURL:   "https://query1.finance.yahoo.com/v8/finance",
			Benchmark: "SPY",
			Retries:   3,
			Backoff:   500 * time.Millisecond,
			Timeout:   10 * time.Second,
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  24 * time.Hour,
		},
		Snapshots: SnapshotsConfig{
			Type:      "localfs",
			Path:      "data/snapshots",
			Freshness: 24 * time.Hour,
		},
		Audit: AuditConfig{
			Sink: "log",
		},
		Risk: RiskConfig{
			Confidence: 0.95,
			RiskFree:   0.02,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Provider.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("provider base_url is required"))
	}
	if c.Provider.Retries < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("provider retries cannot be negative, got %d", c.Provider.Retries))
	}

	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("redis addr required when cache type is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache type: %s", c.Cache.Type))
	}

	switch c.Snapshots.Type {
	case "localfs":
		if c.Snapshots.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("snapshots path required when type is localfs"))
		}
	case "s3":
		if c.Snapshots.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when snapshots type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown snapshots type: %s", c.Snapshots.Type))
	}

	if c.Risk.Confidence <= 0 || c.Risk.Confidence >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk confidence must be between 0 and 1, got %f", c.Risk.Confidence))
	}

	if c.Quotes.Enabled && c.Quotes.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("quotes api_key required when quotes are enabled"))
	}

	return nil
}
