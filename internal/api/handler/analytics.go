package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/valuelab/fundpipe/internal/api/middleware"
	"github.com/valuelab/fundpipe/internal/api/response"
	"github.com/valuelab/fundpipe/internal/backtest"
	"github.com/valuelab/fundpipe/internal/fund"
	"github.com/valuelab/fundpipe/internal/metrics"
	"github.com/valuelab/fundpipe/internal/simulate"
	"github.com/valuelab/fundpipe/internal/valuation"
	"go.uber.org/zap"
)

// Simulation bounds; requests beyond these are clamped.
const (
	defaultPaths = 100
	maxPaths     = 1000
	defaultYears = 10
	maxYears     = 50
)

// AnalyticsHandler serves backtests, Monte Carlo simulations and the
// valuation endpoints.
type AnalyticsHandler struct {
	service    *fund.Service
	backtests  *backtest.Engine
	strategies *backtest.Registry
	metrics    *metrics.Registry
	logger     *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(
	service *fund.Service,
	backtests *backtest.Engine,
	strategies *backtest.Registry,
	reg *metrics.Registry,
	log *zap.Logger,
) *AnalyticsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsHandler{
		service:    service,
		backtests:  backtests,
		strategies: strategies,
		metrics:    reg,
		logger:     log,
	}
}

// BacktestRequest is the request body for POST /api/backtest.
type BacktestRequest struct {
	Ticker   string `json:"ticker"`
	Strategy string `json:"strategy"`
}

// Backtest replays a named strategy over the ticker's history.
func (h *AnalyticsHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.Ticker == "" || req.Strategy == "" {
		response.Error(w, http.StatusBadRequest, fmt.Errorf("ticker and strategy are required"))
		return
	}

	transform, ok := h.strategies.Get(req.Strategy)
	if !ok {
		response.Error(w, http.StatusBadRequest,
			fmt.Errorf("unknown strategy: %s (have %v)", req.Strategy, h.strategies.Names()))
		return
	}

	ident := middleware.IdentityFrom(r.Context())
	result, err := h.backtests.Run(r.Context(), ident, req.Ticker, transform)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordBacktest("error")
		}
		h.logger.Error("backtest failed",
			zap.String("ticker", req.Ticker),
			zap.String("strategy", req.Strategy),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBacktest("ok")
	}

	response.JSON(w, http.StatusOK, result)
}

// SimulateRequest is the request body for POST /api/simulate.
type SimulateRequest struct {
	Ticker string `json:"ticker"`
	Paths  int    `json:"paths"`
	Years  int    `json:"years"`
}

// Simulate generates Monte Carlo forward paths from the ticker's
// historical returns.
func (h *AnalyticsHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.Ticker == "" {
		response.Error(w, http.StatusBadRequest, fmt.Errorf("ticker is required"))
		return
	}
	if req.Paths <= 0 {
		req.Paths = defaultPaths
	}
	if req.Paths > maxPaths {
		req.Paths = maxPaths
	}
	if req.Years <= 0 {
		req.Years = defaultYears
	}
	if req.Years > maxYears {
		req.Years = maxYears
	}

	ident := middleware.IdentityFrom(r.Context())
	result, err := h.service.FundReturns(r.Context(), ident, req.Ticker)
	if err != nil {
		h.logger.Error("simulation input fetch failed",
			zap.String("ticker", req.Ticker),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	paths := simulate.New().Run(result.Series.Returns(), req.Paths, req.Years)
	response.JSON(w, http.StatusOK, paths)
}

// DCF computes a discounted-cash-flow value from the posted inputs.
func (h *AnalyticsHandler) DCF(w http.ResponseWriter, r *http.Request) {
	var in valuation.DCFInputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if in.Years <= 0 {
		response.Error(w, http.StatusBadRequest, fmt.Errorf("years must be positive"))
		return
	}
	if in.DiscountRate <= in.TerminalGrowthRate {
		response.Error(w, http.StatusBadRequest,
			fmt.Errorf("discount rate must exceed terminal growth rate"))
		return
	}

	response.JSON(w, http.StatusOK, map[string]float64{"value": valuation.DCF(in)})
}
