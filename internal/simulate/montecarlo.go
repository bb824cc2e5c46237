// Package simulate generates stochastic forward paths from the empirical
// moments of a return sequence.
package simulate

import (
	"math"
	"math/rand"
	"time"
)

// Point is one step of a simulated path.
type Point struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// Simulator runs Monte Carlo forward simulations. The noise model is
// uniform in [-1, 1), not Gaussian; this matches the established behavior
// of the pipeline and produces deliberately lighter tails than a
// log-normal model would.
type Simulator struct {
	rng *rand.Rand
}

// New creates a simulator with a time-based seed.
func New() *Simulator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a simulator with a caller-supplied source, so
// paths are reproducible under a fixed seed.
func NewWithSource(src rand.Source) *Simulator {
	return &Simulator{rng: rand.New(src)}
}

// Run generates numPaths independent paths of numYears*12 monthly steps.
// The monthly mean and standard deviation derive from returns scaled by
// 1/12; each step draws u in [-1, 1), forms mean + u*stdev, and compounds
// a value series starting at 100.
func (s *Simulator) Run(returns []float64, numPaths, numYears int) [][]Point {
	monthly := make([]float64, len(returns))
	for i, r := range returns {
		monthly[i] = r / 12
	}
	mean, stdDev := moments(monthly)

	steps := numYears * 12
	paths := make([][]Point, 0, numPaths)
	for i := 0; i < numPaths; i++ {
		path := make([]Point, 0, steps)
		value := 100.0
		for j := 0; j < steps; j++ {
			u := s.rng.Float64()*2 - 1
			value *= 1 + mean + u*stdDev
			path = append(path, Point{Period: j + 1, Value: value})
		}
		paths = append(paths, path)
	}
	return paths
}

// moments computes the mean and sample standard deviation. Fewer than two
// observations yields zero deviation, so such inputs simulate flat drift.
func moments(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)-1))
}
