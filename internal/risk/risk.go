// Package risk computes historical-simulation risk statistics from
// periodic return sequences. All functions are pure and return 0 for an
// empty input; that is a defined neutral default, not an error.
package risk

import (
	"math"
	"sort"
)

// Defaults used by the service facade.
const (
	DefaultConfidence = 0.95
	DefaultRiskFree   = 0.02
)

// VaR estimates Value-at-Risk by historical simulation: the return at the
// floor((1-confidence)*n) index of the ascending-sorted sequence. The
// result is a signed return, negative for losses.
func VaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ES is the Expected Shortfall: the mean of all returns strictly below the
// VaR threshold, or 0 when no return falls below it.
func ES(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := VaR(returns, confidence)

	var sum float64
	var count int
	for _, r := range returns {
		if r < threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Beta is covariance(asset, market) / variance(market) over paired
// indices. The caller must supply index-aligned sequences; the facade
// truncates the market series to the asset length before calling. A flat
// market (zero variance) yields 0.
func Beta(asset, market []float64) float64 {
	n := len(asset)
	if len(market) < n {
		n = len(market)
	}
	if n == 0 {
		return 0
	}

	var assetSum, marketSum float64
	for i := 0; i < n; i++ {
		assetSum += asset[i]
		marketSum += market[i]
	}
	assetMean := assetSum / float64(n)
	marketMean := marketSum / float64(n)

	var covariance, marketVariance float64
	for i := 0; i < n; i++ {
		covariance += (asset[i] - assetMean) * (market[i] - marketMean)
		marketVariance += (market[i] - marketMean) * (market[i] - marketMean)
	}

	if marketVariance == 0 {
		return 0
	}
	return covariance / marketVariance
}

// Sharpe is the mean excess return over riskFree divided by the sample
// standard deviation of the excess returns. A zero deviation (single or
// constant input) yields 0.
func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := make([]float64, len(returns))
	var sum float64
	for i, r := range returns {
		excess[i] = r - riskFree
		sum += excess[i]
	}
	mean := sum / float64(len(excess))

	var variance float64
	for _, e := range excess {
		variance += (e - mean) * (e - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(excess)-1))

	if stdDev == 0 {
		return 0
	}
	return mean / stdDev
}
