package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs (divides by N).
func StdDev(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	mean := Mean(xs)
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n))
}

// ZScore returns how many standard deviations x lies from mean. A zero or
// negative deviation yields 0.
func ZScore(x, mean, stdDev float64) float64 {
	if stdDev <= 0 || math.IsNaN(stdDev) {
		return 0
	}
	return (x - mean) / stdDev
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
