// Package sentiment queries an external market-sentiment endpoint on a
// best-effort basis. Any failure degrades to a neutral score instead of
// failing the caller.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Score is a sentiment reading for one ticker.
type Score struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// Neutral is the fallback reading returned on any upstream failure.
var Neutral = Score{Sentiment: "neutral", Score: 0.5}

// Client fetches sentiment readings.
type Client struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// New creates a sentiment client for the configured endpoint.
func New(endpoint string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: endpoint,
		logger:   log,
	}
}

// Fetch returns the sentiment for ticker, or Neutral when the endpoint is
// unreachable, errors, or returns an unusable body.
func (c *Client) Fetch(ctx context.Context, ticker string) Score {
	u := fmt.Sprintf("%s?ticker=%s", c.endpoint, url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Neutral
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("sentiment fetch failed", zap.String("ticker", ticker), zap.Error(err))
		return Neutral
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("sentiment fetch failed",
			zap.String("ticker", ticker),
			zap.Int("status", resp.StatusCode),
		)
		return Neutral
	}

	var score Score
	if err := json.NewDecoder(resp.Body).Decode(&score); err != nil {
		return Neutral
	}
	return score
}
