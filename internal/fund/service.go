// Package fund orchestrates the analytics pipeline: authorize, audit,
// cache lookup, fetch and normalize on miss, derive risk metrics, write
// back. Failures of the primary path surface; failures of optimizations
// (cache, audit, opportunistic persistence) are logged and isolated.
package fund

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valuelab/fundpipe/internal/audit"
	"github.com/valuelab/fundpipe/internal/cache"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/metrics"
	"github.com/valuelab/fundpipe/internal/risk"
	"github.com/valuelab/fundpipe/internal/series"
	"go.uber.org/zap"
)

const sideEffectTimeout = 10 * time.Second

// ChartProvider fetches a raw chart payload for a ticker.
type ChartProvider interface {
	FetchChart(ctx context.Context, ticker string) (json.RawMessage, error)
}

// SnapshotStore is the durable tier of the cache-aside store.
type SnapshotStore interface {
	Put(ctx context.Context, snap *core.RawSnapshot) error
	Latest(ctx context.Context, ticker, org string, notBefore time.Time) (*core.RawSnapshot, error)
}

// Authorizer decides whether an identity holds a required role.
type Authorizer interface {
	Authorize(ctx context.Context, identity *core.Identity, requiredRole string) error
}

// Config holds pipeline tuning. Zero values fall back to the defaults
// used in production.
type Config struct {
	Benchmark  string
	CacheTTL   time.Duration
	Freshness  time.Duration
	Confidence float64
	RiskFree   float64
}

// Deps are the service collaborators.
type Deps struct {
	Provider  ChartProvider
	Cache     cache.Cache
	Snapshots SnapshotStore
	Authz     Authorizer
	Audit     audit.Recorder
	Metrics   *metrics.Registry
	Logger    *zap.Logger
}

// Service is the fund analytics facade.
type Service struct {
	provider  ChartProvider
	cache     cache.Cache
	snapshots SnapshotStore
	authz     Authorizer
	audit     audit.Recorder
	metrics   *metrics.Registry
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

// NewService creates a fund service.
func NewService(deps Deps, cfg Config) *Service {
	if cfg.Benchmark == "" {
		cfg.Benchmark = "SPY"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Freshness <= 0 {
		cfg.Freshness = 24 * time.Hour
	}
	if cfg.Confidence <= 0 {
		cfg.Confidence = risk.DefaultConfidence
	}
	if cfg.RiskFree == 0 {
		cfg.RiskFree = risk.DefaultRiskFree
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	return &Service{
		provider:  deps.Provider,
		cache:     deps.Cache,
		snapshots: deps.Snapshots,
		authz:     deps.Authz,
		audit:     deps.Audit,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// FundReturns runs the pipeline for one ticker on behalf of identity.
// A volatile cache hit short-circuits everything except the access audit.
// On a miss, a fresh-enough durable snapshot is reused before any live
// fetch, the benchmark series is fetched live, risk metrics are derived
// with the market series truncated to the asset length, and the combined
// result is written back with the full TTL.
func (s *Service) FundReturns(ctx context.Context, identity *core.Identity, ticker string) (*core.FundResult, error) {
	if err := s.authz.Authorize(ctx, identity, core.RoleClient); err != nil {
		s.metrics.RecordAuthzDecision("deny")
		return nil, err
	}
	s.metrics.RecordAuthzDecision("grant")

	s.recordAudit(identity, "fund.returns.read", map[string]any{"ticker": ticker})

	start := s.now()
	key := cache.ReturnsKey(ticker, identity.OrganizationID)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var result core.FundResult
		if err := json.Unmarshal(data, &result); err == nil {
			s.metrics.RecordCacheLookup("hit")
			return &result, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
	}
	s.metrics.RecordCacheLookup("miss")

	raw, err := s.rawPayload(ctx, identity, ticker)
	if err != nil {
		return nil, err
	}

	fundSeries, err := series.Normalize(raw)
	if err != nil {
		return nil, err
	}
	returns := fundSeries.Returns()

	market, err := s.benchmarkReturns(ctx)
	if err != nil {
		return nil, err
	}
	if len(market) > len(returns) {
		market = market[:len(returns)]
	}

	result := &core.FundResult{
		Series: fundSeries,
		Metrics: core.RiskMetrics{
			VaR:    risk.VaR(returns, s.cfg.Confidence),
			ES:     risk.ES(returns, s.cfg.Confidence),
			Beta:   risk.Beta(returns, market),
			Sharpe: risk.Sharpe(returns, s.cfg.RiskFree),
		},
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.metrics.RecordPipeline(s.now().Sub(start).Seconds())
	return result, nil
}

// rawPayload returns a fresh-enough persisted payload if one exists, or
// performs a live fetch and opportunistically persists the result.
// Snapshot lookups and writes are optimizations: their failures never
// fail the request.
func (s *Service) rawPayload(ctx context.Context, identity *core.Identity, ticker string) (json.RawMessage, error) {
	org := identity.OrganizationID

	snap, err := s.snapshots.Latest(ctx, ticker, org, s.now().Add(-s.cfg.Freshness))
	if err != nil {
		s.logger.Warn("snapshot lookup failed",
			zap.String("ticker", ticker),
			zap.String("org", org),
			zap.Error(err),
		)
	}
	if snap != nil {
		s.metrics.RecordSnapshotReuse()
		return snap.Payload, nil
	}

	fetchedAt := s.now()
	raw, err := s.provider.FetchChart(ctx, ticker)
	if err != nil {
		s.metrics.RecordProviderFetch(ticker, "error")
		return nil, err
	}
	s.metrics.RecordProviderFetch(ticker, "ok")

	s.persistAsync(identity, &core.RawSnapshot{
		Ticker:         ticker,
		OrganizationID: org,
		FetchedAt:      fetchedAt,
		Payload:        raw,
	})
	return raw, nil
}

func (s *Service) benchmarkReturns(ctx context.Context) ([]float64, error) {
	raw, err := s.provider.FetchChart(ctx, s.cfg.Benchmark)
	if err != nil {
		s.metrics.RecordProviderFetch(s.cfg.Benchmark, "error")
		return nil, err
	}
	s.metrics.RecordProviderFetch(s.cfg.Benchmark, "ok")

	benchSeries, err := series.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return benchSeries.Returns(), nil
}

// persistAsync appends the snapshot on a detached goroutine. The write
// and its audit record never join the caller's result path.
func (s *Service) persistAsync(identity *core.Identity, snap *core.RawSnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.snapshots.Put(ctx, snap); err != nil {
			s.metrics.RecordSnapshotPersist("error")
			s.logger.Warn("snapshot persist failed",
				zap.String("ticker", snap.Ticker),
				zap.String("org", snap.OrganizationID),
				zap.Error(err),
			)
			return
		}
		s.metrics.RecordSnapshotPersist("ok")
		s.recordAudit(identity, "fund.snapshot.persist", map[string]any{"ticker": snap.Ticker})
	}()
}

// recordAudit fires an audit record on a detached goroutine; failures are
// logged, never surfaced.
func (s *Service) recordAudit(identity *core.Identity, action string, details map[string]any) {
	event := audit.NewEvent(identity, action, details)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.audit.Record(ctx, event); err != nil {
			s.logger.Warn("audit record failed",
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}()
}
