package core

import (
	"encoding/json"
	"time"
)

// Role names used by the permission resolver.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// MonthDate is a calendar-month-start date serialized as YYYY-MM-DD.
type MonthDate struct {
	time.Time
}

// MonthStart truncates t to the start of its UTC month.
func MonthStart(t time.Time) MonthDate {
	u := t.UTC()
	return MonthDate{time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

func (d MonthDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *MonthDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MonthlyObservation is one point of a normalized monthly series.
// Return is nil for the first observation. Index is rebased so the
// first observation is exactly 100.
type MonthlyObservation struct {
	Date   MonthDate `json:"date"`
	Price  float64   `json:"price"`
	Return *float64  `json:"return"`
	Index  float64   `json:"index"`
}

// ReturnSeries is an ordered monthly series for one ticker. It is derived
// from a RawSnapshot on demand and never persisted directly.
type ReturnSeries []MonthlyObservation

// Returns extracts the non-nil month-on-month returns in order.
func (s ReturnSeries) Returns() []float64 {
	out := make([]float64, 0, len(s))
	for _, obs := range s {
		if obs.Return != nil {
			out = append(out, *obs.Return)
		}
	}
	return out
}

// RiskMetrics holds the derived risk statistics for one (ticker, org) pair.
type RiskMetrics struct {
	VaR    float64 `json:"var"`
	ES     float64 `json:"es"`
	Beta   float64 `json:"beta"`
	Sharpe float64 `json:"sharpe"`
}

// FundResult is the cacheable response payload for a fund request.
type FundResult struct {
	Series  ReturnSeries `json:"series"`
	Metrics RiskMetrics  `json:"metrics"`
}

// RawSnapshot is an opaque provider payload captured at fetch time.
// Immutable once persisted; the pipeline only appends.
type RawSnapshot struct {
	Ticker         string          `json:"ticker"`
	OrganizationID string          `json:"organization_id"`
	FetchedAt      time.Time       `json:"fetched_at"`
	Payload        json.RawMessage `json:"payload"`
}

// Identity is the already-resolved caller identity supplied by the
// session collaborator. Read-only to this service.
type Identity struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
	ParentID       string `json:"parent_id,omitempty"`
}

// AuditEvent records a sensitive action. Append-only, never read back.
type AuditEvent struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	OrganizationID string         `json:"organization_id"`
	Action         string         `json:"action"`
	Details        map[string]any `json:"details,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Quote is a real-time price quote from the quotes provider.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Time          time.Time `json:"time"`
	Source        string    `json:"source"`
}

// Fundamentals holds company overview figures from the quotes provider.
type Fundamentals struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	PERatio       float64 `json:"pe_ratio"`
	EPS           float64 `json:"eps"`
	DividendYield float64 `json:"dividend_yield"`
	MarketCap     float64 `json:"market_cap"`
}

// Fund is a configured watchlist entry exposed by the funds endpoint.
type Fund struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}
