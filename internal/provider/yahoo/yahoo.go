package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/valuelab/fundpipe/internal/core"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance"

// validTicker matches fund/stock tickers like SPY, VTSAX, 0700.HK
var validTicker = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateTicker checks if a ticker has valid format
func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Config holds chart client settings. Retries is the retry count after the
// first attempt; Backoff is the initial delay and doubles on every attempt.
type Config struct {
	BaseURL string
	Retries int
	Backoff time.Duration
	Timeout time.Duration
}

// Client fetches monthly chart payloads from the Yahoo v8 chart API.
type Client struct {
	client  *http.Client
	baseURL string
	retries int
	backoff time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new chart client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		retries: cfg.Retries,
		backoff: cfg.Backoff,
		logger:  log,
		now:     time.Now,
	}
}

// FetchChart fetches the full monthly price history for ticker and returns
// the raw payload verbatim, so it can be persisted and re-normalized later.
// Any non-2xx status or transport error counts as a failed attempt; the
// final failure after exhausting retries is returned to the caller.
func (c *Client) FetchChart(ctx context.Context, ticker string) (json.RawMessage, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	u := fmt.Sprintf("%s/chart/%s?period1=0&period2=%d&interval=1mo&includeAdjustedClose=true",
		c.baseURL, url.PathEscape(ticker), c.now().Unix())

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// 500ms, 1s, 2s for the default config
			delay := c.backoff << (attempt - 1)
			c.logger.Debug("retrying chart fetch",
				zap.String("ticker", ticker),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, core.WrapError(core.ErrFetchFailed, ctx.Err())
			case <-time.After(delay):
			}
		}

		payload, err := c.fetchOnce(ctx, u)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}

	return nil, core.WrapError(core.ErrFetchFailed, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, u string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
