package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valuelab/fundpipe/internal/api/response"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/sentiment"
	"go.uber.org/zap"
)

// QuoteProvider supplies real-time quotes and fundamentals.
type QuoteProvider interface {
	Quote(ctx context.Context, ticker string) (*core.Quote, error)
	Overview(ctx context.Context, ticker string) (*core.Fundamentals, error)
}

// SentimentProvider supplies best-effort sentiment readings.
type SentimentProvider interface {
	Fetch(ctx context.Context, ticker string) sentiment.Score
}

// MarketHandler serves the fund list, quotes, sentiment and health.
type MarketHandler struct {
	funds     []core.Fund
	quotes    QuoteProvider
	sentiment SentimentProvider
	version   string
	startedAt time.Time
	logger    *zap.Logger
}

// NewMarketHandler creates a market handler. Quotes and sentiment may be
// nil when disabled by configuration.
func NewMarketHandler(funds []core.Fund, quotes QuoteProvider, sent SentimentProvider, version string, log *zap.Logger) *MarketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarketHandler{
		funds:     funds,
		quotes:    quotes,
		sentiment: sent,
		version:   version,
		startedAt: time.Now(),
		logger:    log,
	}
}

// Funds handles GET /api/funds.
func (h *MarketHandler) Funds(w http.ResponseWriter, r *http.Request) {
	funds := h.funds
	if funds == nil {
		funds = []core.Fund{}
	}
	response.JSON(w, http.StatusOK, funds)
}

// Quote handles GET /api/quote/{ticker}.
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.quotes == nil {
		response.Error(w, http.StatusServiceUnavailable, fmt.Errorf("quotes provider not configured"))
		return
	}

	ticker := r.PathValue("ticker")
	quote, err := h.quotes.Quote(r.Context(), ticker)
	if err != nil {
		h.logger.Error("quote fetch failed", zap.String("ticker", ticker), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, quote)
}

// Fundamentals handles GET /api/fundamentals/{ticker}.
func (h *MarketHandler) Fundamentals(w http.ResponseWriter, r *http.Request) {
	if h.quotes == nil {
		response.Error(w, http.StatusServiceUnavailable, fmt.Errorf("quotes provider not configured"))
		return
	}

	ticker := r.PathValue("ticker")
	overview, err := h.quotes.Overview(r.Context(), ticker)
	if err != nil {
		h.logger.Error("fundamentals fetch failed", zap.String("ticker", ticker), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, overview)
}

// Sentiment handles GET /api/sentiment/{ticker}. Always succeeds: the
// client degrades to a neutral reading on upstream failure.
func (h *MarketHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	if h.sentiment == nil {
		response.JSON(w, http.StatusOK, sentiment.Neutral)
		return
	}
	response.JSON(w, http.StatusOK, h.sentiment.Fetch(r.Context(), r.PathValue("ticker")))
}

type healthBody struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Version       string    `json:"version"`
}

// Health handles GET /api/health.
func (h *MarketHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, healthBody{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Version:       h.version,
	})
}
