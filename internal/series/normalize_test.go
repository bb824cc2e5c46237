package series

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/valuelab/fundpipe/internal/core"
)

func chartPayload(timestamps []int64, prices []any) json.RawMessage {
	priceStrs := make([]string, len(prices))
	for i, p := range prices {
		if p == nil {
			priceStrs[i] = "null"
		} else {
			priceStrs[i] = fmt.Sprintf("%v", p)
		}
	}
	tsStrs := make([]string, len(timestamps))
	for i, ts := range timestamps {
		tsStrs[i] = fmt.Sprintf("%d", ts)
	}
	payload := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"adjclose":[{"adjclose":[%s]}]}}]}}`,
		strings.Join(tsStrs, ","), strings.Join(priceStrs, ","))
	return json.RawMessage(payload)
}

func ts(year int, month time.Month) int64 {
	// Mid-month, to verify truncation to month start.
	return time.Date(year, month, 15, 9, 30, 0, 0, time.UTC).Unix()
}

func TestNormalize_IndexAndReturns(t *testing.T) {
	raw := chartPayload(
		[]int64{ts(2024, time.January), ts(2024, time.February), ts(2024, time.March)},
		[]any{100.0, 110.0, 99.0},
	)

	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(series))
	}

	wantIndex := []float64{100, 110, 99}
	for i, obs := range series {
		if math.Abs(obs.Index-wantIndex[i]) > 1e-9 {
			t.Errorf("index[%d] = %v, want %v", i, obs.Index, wantIndex[i])
		}
	}

	if series[0].Return != nil {
		t.Error("first observation must have a nil return")
	}
	if r := *series[1].Return; math.Abs(r-0.10) > 1e-9 {
		t.Errorf("return[1] = %v, want 0.10", r)
	}
	if r := *series[2].Return; math.Abs(r-(-0.10)) > 1e-9 {
		t.Errorf("return[2] = %v, want -0.10", r)
	}
}

func TestNormalize_DatesTruncatedToMonthStart(t *testing.T) {
	raw := chartPayload([]int64{ts(2024, time.March)}, []any{50.0})

	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !series[0].Date.Time.Equal(want) {
		t.Errorf("date = %v, want %v", series[0].Date.Time, want)
	}
}

func TestNormalize_NullPricesDropped(t *testing.T) {
	raw := chartPayload(
		[]int64{ts(2024, time.January), ts(2024, time.February), ts(2024, time.March)},
		[]any{100.0, nil, 120.0},
	)

	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(series))
	}
	// The return bridges the gap left by the dropped observation.
	if r := *series[1].Return; math.Abs(r-0.20) > 1e-9 {
		t.Errorf("return = %v, want 0.20", r)
	}
}

func TestNormalize_RebasedToFirstUsablePrice(t *testing.T) {
	raw := chartPayload(
		[]int64{ts(2024, time.January), ts(2024, time.February)},
		[]any{nil, 50.0},
	)

	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(series))
	}
	if series[0].Index != 100 {
		t.Errorf("index = %v, want 100", series[0].Index)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json at all"},
		{"empty result", `{"chart":{"result":[]}}`},
		{"missing arrays", `{"chart":{"result":[{}]}}`},
		{"all nulls", `{"chart":{"result":[{"timestamp":[1700000000],"indicators":{"adjclose":[{"adjclose":[null]}]}}]}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(json.RawMessage(tc.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, core.ErrMalformedPayload) {
				t.Errorf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}
