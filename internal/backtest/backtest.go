// Package backtest replays strategy transforms over historical return
// sequences and derives terminal performance statistics.
package backtest

import (
	"context"
	"math"

	"github.com/valuelab/fundpipe/internal/core"
)

// Transform is the strategy capability: a pure function mapping a return
// sequence to a transformed return sequence. It is applied to the whole
// historical sequence at once, not incrementally.
type Transform func(returns []float64) []float64

// Result holds the terminal performance of a backtest run.
type Result struct {
	FinalValue  float64 `json:"finalValue"`
	CAGR        float64 `json:"cagr"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

// SeriesProvider supplies normalized monthly return series for a ticker.
type SeriesProvider interface {
	FundReturns(ctx context.Context, identity *core.Identity, ticker string) (*core.FundResult, error)
}

// Engine runs backtests against historical series from a SeriesProvider.
type Engine struct {
	provider SeriesProvider
}

// New creates a backtest engine.
func New(provider SeriesProvider) *Engine {
	return &Engine{provider: provider}
}

// Run fetches the ticker's normalized returns, applies the strategy
// transform, and evaluates the compounded value path.
func (e *Engine) Run(ctx context.Context, identity *core.Identity, ticker string, strategy Transform) (*Result, error) {
	res, err := e.provider.FundReturns(ctx, identity, ticker)
	if err != nil {
		return nil, err
	}
	return Evaluate(strategy(res.Series.Returns())), nil
}

// Evaluate compounds a value series starting at 100 from the given
// returns. CAGR is the annual rate implied by the terminal value over
// len(returns) months; max drawdown tracks the largest peak-to-trough
// decline via a running peak.
func Evaluate(returns []float64) *Result {
	value := 100.0
	peak := 100.0
	var maxDD float64

	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	result := &Result{FinalValue: value, MaxDrawdown: maxDD}
	if len(returns) > 0 {
		result.CAGR = math.Pow(value/100, 12/float64(len(returns))) - 1
	}
	return result
}
