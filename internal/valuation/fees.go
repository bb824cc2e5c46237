package valuation

// AUMFee is the annual assets-under-management fee at the given rate.
func AUMFee(aum, rate float64) float64 {
	return aum * rate
}

// PerformanceFee compounds the period returns into a total return and
// charges rate on the excess over the hurdle. No excess, no fee.
func PerformanceFee(aum float64, returns []float64, rate, hurdle float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	excess := total - 1 - hurdle
	if excess <= 0 {
		return 0
	}
	return aum * excess * rate
}
