// Package app wires the fund pipeline together from configuration: the
// chart provider, the two cache tiers, authorization, audit, metrics and
// the analytics engines. The HTTP layer and the CLI both build on it.
package app

import (
	"github.com/valuelab/fundpipe/internal/api"
	"github.com/valuelab/fundpipe/internal/api/handler"
	"github.com/valuelab/fundpipe/internal/audit"
	"github.com/valuelab/fundpipe/internal/authz"
	"github.com/valuelab/fundpipe/internal/backtest"
	"github.com/valuelab/fundpipe/internal/blob"
	"github.com/valuelab/fundpipe/internal/cache"
	"github.com/valuelab/fundpipe/internal/config"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/fund"
	"github.com/valuelab/fundpipe/internal/logger"
	"github.com/valuelab/fundpipe/internal/metrics"
	"github.com/valuelab/fundpipe/internal/provider/alphavantage"
	"github.com/valuelab/fundpipe/internal/provider/yahoo"
	"github.com/valuelab/fundpipe/internal/sentiment"
	"github.com/valuelab/fundpipe/internal/snapshot"
	"go.uber.org/zap"
)

// App is the assembled pipeline.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	Metrics    *metrics.Registry
	Service    *fund.Service
	Backtests  *backtest.Engine
	Strategies *backtest.Registry
	Quotes     *alphavantage.Client
	Sentiment  *sentiment.Client
}

// New builds an App from configuration. Backend selection (memory vs
// redis cache, localfs vs s3 snapshots, log vs blob audit) follows the
// config, which is expected to have passed Validate.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	var volatile cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		volatile = cache.NewRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
	default:
		volatile = cache.NewMemory()
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	snapshots := snapshot.NewStore(storage, logger.Named(log, "snapshot"))

	var recorder audit.Recorder
	switch cfg.Audit.Sink {
	case "blob":
		auditStorage := storage
		if cfg.Audit.Path != "" {
			auditStorage, err = blob.NewLocalFS(cfg.Audit.Path)
			if err != nil {
				return nil, err
			}
		}
		recorder = audit.NewBlobRecorder(auditStorage)
	default:
		recorder = audit.NewLogRecorder(logger.Named(log, "audit"))
	}

	users := make([]core.Identity, 0, len(cfg.Directory.Users))
	for _, u := range cfg.Directory.Users {
		users = append(users, core.Identity{
			ID:             u.ID,
			Role:           u.Role,
			OrganizationID: u.OrganizationID,
			ParentID:       u.ParentID,
		})
	}
	resolver := authz.NewResolver(authz.NewStaticDirectory(users), logger.Named(log, "authz"))

	charts := yahoo.New(yahoo.Config{
		BaseURL: cfg.Provider.BaseURL,
		Retries: cfg.Provider.Retries,
		Backoff: cfg.Provider.Backoff,
		Timeout: cfg.Provider.Timeout,
	}, logger.Named(log, "yahoo"))

	svc := fund.NewService(fund.Deps{
		Provider:  charts,
		Cache:     volatile,
		Snapshots: snapshots,
		Authz:     resolver,
		Audit:     recorder,
		Metrics:   reg,
		Logger:    logger.Named(log, "fund"),
	}, fund.Config{
		Benchmark:  cfg.Provider.Benchmark,
		CacheTTL:   cfg.Cache.TTL,
		Freshness:  cfg.Snapshots.Freshness,
		Confidence: cfg.Risk.Confidence,
		RiskFree:   cfg.Risk.RiskFree,
	})

	a := &App{
		cfg:        cfg,
		logger:     log,
		Metrics:    reg,
		Service:    svc,
		Backtests:  backtest.New(svc),
		Strategies: backtest.Defaults(),
	}

	if cfg.Quotes.Enabled {
		a.Quotes = alphavantage.New(alphavantage.Config{
			BaseURL: cfg.Quotes.BaseURL,
			APIKey:  cfg.Quotes.APIKey,
		})
	}
	if cfg.Sentiment.Enabled {
		a.Sentiment = sentiment.New(cfg.Sentiment.Endpoint, logger.Named(log, "sentiment"))
	}

	return a, nil
}

func newStorage(cfg *config.Config) (blob.Storage, error) {
	switch cfg.Snapshots.Type {
	case "s3":
		return blob.NewS3(blob.S3Config{
			Bucket:    cfg.Snapshots.S3.Bucket,
			Endpoint:  cfg.Snapshots.S3.Endpoint,
			Region:    cfg.Snapshots.S3.Region,
			AccessKey: cfg.Snapshots.S3.AccessKey,
			SecretKey: cfg.Snapshots.S3.SecretKey,
			Prefix:    cfg.Snapshots.S3.Prefix,
		})
	default:
		return blob.NewLocalFS(cfg.Snapshots.Path)
	}
}

// Funds returns the configured fund directory.
func (a *App) Funds() []core.Fund {
	funds := make([]core.Fund, 0, len(a.cfg.Funds))
	for _, f := range a.cfg.Funds {
		funds = append(funds, core.Fund{Ticker: f.Ticker, Name: f.Name})
	}
	return funds
}

// Server builds the HTTP server around the assembled pipeline.
func (a *App) Server(version string) *api.Server {
	var quotes handler.QuoteProvider
	if a.Quotes != nil {
		quotes = a.Quotes
	}
	var sent handler.SentimentProvider
	if a.Sentiment != nil {
		sent = a.Sentiment
	}

	h := api.Handlers{
		Fund:      handler.NewFundHandler(a.Service, logger.Named(a.logger, "handler")),
		Analytics: handler.NewAnalyticsHandler(a.Service, a.Backtests, a.Strategies, a.Metrics, logger.Named(a.logger, "handler")),
		Market:    handler.NewMarketHandler(a.Funds(), quotes, sent, version, logger.Named(a.logger, "handler")),
		Metrics:   a.Metrics,
	}

	return api.NewServer(api.Config{
		Host:        a.cfg.Server.Host,
		Port:        a.cfg.Server.Port,
		MetricsPath: a.cfg.Metrics.Path,
	}, h, a.logger)
}
