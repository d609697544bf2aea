// Package stats is the single home for the engine's numerical routines.
// Every function is pure: plain numeric slices in, plain values out, with an
// explicit ok flag instead of NaN when a quantity cannot be computed.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean. ok is false for an empty slice.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs)), true
}

// SD returns the sample standard deviation with Bessel's correction.
// ok is false when fewer than 2 values are available.
func SD(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	mean, _ := Mean(xs)
	var sum float64
	for _, v := range xs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1)), true
}

// MeanSD computes both moments in one pass over the checks.
func MeanSD(xs []float64) (mean, sd float64, ok bool) {
	mean, ok = Mean(xs)
	if !ok {
		return 0, 0, false
	}
	sd, ok = SD(xs)
	return mean, sd, ok
}

// Quantile returns the q-th quantile (0..1) using linear interpolation
// between order statistics. The input is not modified.
func Quantile(xs []float64, q float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0], true
	}
	if q >= 1 {
		return sorted[len(sorted)-1], true
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, true
}

// ZScore standardizes a value against a population mean and SD.
// Degenerate SDs are the caller's problem; guard before calling.
func ZScore(v, mean, sd float64) float64 {
	return (v - mean) / sd
}
