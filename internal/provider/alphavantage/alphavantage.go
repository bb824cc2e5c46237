package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valuelab/fundpipe/internal/core"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Config holds quotes provider settings.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client fetches real-time quotes and company fundamentals from the
// Alpha Vantage API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new Alpha Vantage client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) get(ctx context.Context, function, ticker string, out any) error {
	u := fmt.Sprintf("%s?function=%s&symbol=%s&apikey=%s",
		c.baseURL, function, url.QueryEscape(ticker), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Alpha Vantage GLOBAL_QUOTE response, all values are strings on the wire.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// Quote fetches a real-time quote for ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*core.Quote, error) {
	var result globalQuoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", ticker, &result); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	q := result.GlobalQuote
	if q.Symbol == "" {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quote for ticker: %s", ticker))
	}

	price, _ := strconv.ParseFloat(q.Price, 64)
	change, _ := strconv.ParseFloat(q.Change, 64)
	changePct, _ := strconv.ParseFloat(strings.TrimSuffix(q.ChangePercent, "%"), 64)
	volume, _ := strconv.ParseInt(q.Volume, 10, 64)

	t, err := time.Parse("2006-01-02", q.LatestDay)
	if err != nil {
		t = time.Now().UTC()
	}

	return &core.Quote{
		Ticker:        ticker,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Volume:        volume,
		Time:          t,
		Source:        "alphavantage",
	}, nil
}

type overviewResponse struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	PERatio       string `json:"PERatio"`
	EPS           string `json:"EPS"`
	DividendYield string `json:"DividendYield"`
	MarketCap     string `json:"MarketCapitalization"`
}

// Overview fetches company fundamentals for ticker.
func (c *Client) Overview(ctx context.Context, ticker string) (*core.Fundamentals, error) {
	var result overviewResponse
	if err := c.get(ctx, "OVERVIEW", ticker, &result); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	if result.Symbol == "" {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no overview for ticker: %s", ticker))
	}

	pe, _ := strconv.ParseFloat(result.PERatio, 64)
	eps, _ := strconv.ParseFloat(result.EPS, 64)
	dy, _ := strconv.ParseFloat(result.DividendYield, 64)
	mc, _ := strconv.ParseFloat(result.MarketCap, 64)

	return &core.Fundamentals{
		Ticker:        ticker,
		Name:          result.Name,
		PERatio:       pe,
		EPS:           eps,
		DividendYield: dy,
		MarketCap:     mc,
	}, nil
}
