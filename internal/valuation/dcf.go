// Package valuation holds pure valuation and fee arithmetic: a two-stage
// EPS discounted-cash-flow model and management fee calculations.
package valuation

import "math"

// DCFInputs parameterize the EPS discount model.
type DCFInputs struct {
	CurrentEPS         float64 `json:"currentEps"`
	GrowthRate         float64 `json:"growthRate"`
	DiscountRate       float64 `json:"discountRate"`
	TerminalGrowthRate float64 `json:"terminalGrowthRate"`
	Years              int     `json:"years"`
}

// DCF projects EPS at the growth rate for the given horizon, discounts
// each year's figure, and adds the discounted terminal value
// eps*(1+tg)/(dr-tg). The discount rate must exceed the terminal growth
// rate for the terminal value to be meaningful.
func DCF(in DCFInputs) float64 {
	futureEPS := in.CurrentEPS
	var discounted float64

	for i := 0; i < in.Years; i++ {
		futureEPS *= 1 + in.GrowthRate
		discounted += futureEPS / math.Pow(1+in.DiscountRate, float64(i+1))
	}

	terminal := futureEPS * (1 + in.TerminalGrowthRate) / (in.DiscountRate - in.TerminalGrowthRate)
	discounted += terminal / math.Pow(1+in.DiscountRate, float64(in.Years))

	return discounted
}
