// Package series converts raw chart payloads into normalized monthly
// return series rebased to 100.
package series

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valuelab/fundpipe/internal/core"
)

// Chart payload shape, as returned by the provider. AdjClose entries are
// nullable on the wire.
type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		AdjClose []adjCloseBlock `json:"adjclose"`
	} `json:"indicators"`
}

type adjCloseBlock struct {
	AdjClose []*float64 `json:"adjclose"`
}

// Normalize converts a raw provider payload into an ordered monthly return
// series. Each timestamp is truncated to its UTC month start, null prices
// are dropped, return[i] = price[i]/price[i-1]-1 (nil for the first
// observation) and index[i] = price[i]/price[0]*100.
//
// Provider order is preserved as-is; an out-of-order payload is a
// precondition violation, not a defended case.
func Normalize(raw json.RawMessage) (core.ReturnSeries, error) {
	var envelope chartEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, core.WrapError(core.ErrMalformedPayload, err)
	}

	if len(envelope.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrMalformedPayload,
			fmt.Errorf("payload has no chart result"))
	}

	result := envelope.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.AdjClose) == 0 {
		return nil, core.WrapError(core.ErrMalformedPayload,
			fmt.Errorf("payload lacks timestamp/adjclose arrays"))
	}

	prices := result.Indicators.AdjClose[0].AdjClose

	type pair struct {
		ts    int64
		price float64
	}
	pairs := make([]pair, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(prices) || prices[i] == nil {
			continue
		}
		pairs = append(pairs, pair{ts: ts, price: *prices[i]})
	}

	if len(pairs) == 0 {
		return nil, core.WrapError(core.ErrMalformedPayload,
			fmt.Errorf("no usable price observations"))
	}

	base := pairs[0].price
	out := make(core.ReturnSeries, 0, len(pairs))
	for i, p := range pairs {
		obs := core.MonthlyObservation{
			Date:  core.MonthStart(time.Unix(p.ts, 0)),
			Price: p.price,
			Index: p.price / base * 100,
		}
		if i > 0 {
			r := p.price/pairs[i-1].price - 1
			obs.Return = &r
		}
		out = append(out, obs)
	}

	return out, nil
}
