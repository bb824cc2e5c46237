// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valuelab/fundpipe/internal/api/handler"
	"github.com/valuelab/fundpipe/internal/api/middleware"
	"github.com/valuelab/fundpipe/internal/metrics"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the fund pipeline
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// Handlers are the endpoint handlers wired into the server.
type Handlers struct {
	Fund      *handler.FundHandler
	Analytics *handler.AnalyticsHandler
	Market    *handler.MarketHandler
	Metrics   *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, h Handlers, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /fund/{ticker}", h.Fund.Returns)
	mux.HandleFunc("POST /api/backtest", h.Analytics.Backtest)
	mux.HandleFunc("POST /api/simulate", h.Analytics.Simulate)
	mux.HandleFunc("POST /api/valuation/dcf", h.Analytics.DCF)
	mux.HandleFunc("GET /api/funds", h.Market.Funds)
	mux.HandleFunc("GET /api/quote/{ticker}", h.Market.Quote)
	mux.HandleFunc("GET /api/fundamentals/{ticker}", h.Market.Fundamentals)
	mux.HandleFunc("GET /api/sentiment/{ticker}", h.Market.Sentiment)
	mux.HandleFunc("GET /api/health", h.Market.Health)

	var root http.Handler = mux
	root = middleware.Identity()(root)
	if h.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(h.Metrics, promhttp.HandlerOpts{}))
		root = metrics.HTTPMiddleware(h.Metrics)(root)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:     root,
			ReadTimeout: 15 * time.Second,
			// A cold pipeline can ride out the provider's full retry
			// schedule, so the write timeout is generous.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
