package stats

import (
	"math"
	"sort"
)

// Method selects the correlation flavor used engine-wide so every module
// reports internally consistent numbers.
type Method string

const (
	MethodPearson  Method = "pearson"
	MethodSpearman Method = "spearman"
)

// Pearson computes the product-moment correlation of two equal-length
// vectors. Zero-variance input yields r=0 with ok=false rather than NaN.
func Pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}
	mx, _ := Mean(x)
	my, _ := Mean(y)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	// Floating point can nudge r just past the bounds.
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r, true
}

// Spearman computes the rank correlation: average-rank transform of both
// vectors, then Pearson on the ranks.
func Spearman(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Corr dispatches on the engine-wide method.
func Corr(method Method, x, y []float64) (float64, bool) {
	if method == MethodSpearman {
		return Spearman(x, y)
	}
	return Pearson(x, y)
}

// Ranks returns 1-based ranks; tied values receive the mean of the ranks
// they occupy.
func Ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// Average rank across the tie group [i, j].
		avg := (float64(i+1) + float64(j+1)) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// FisherZ applies the Fisher transform. |r| is clamped slightly inside the
// open interval so the transform stays finite on boundary input.
func FisherZ(r float64) float64 {
	const eps = 1e-12
	if r >= 1 {
		r = 1 - eps
	}
	if r <= -1 {
		r = -1 + eps
	}
	return 0.5 * math.Log((1+r)/(1-r))
}

// FisherCI returns the 95% confidence interval for r at sample size n via
// the Fisher transform. Undefined (ok=false) for n<4 or |r|=1.
func FisherCI(r float64, n int) (lo, hi float64, ok bool) {
	if n < 4 || r >= 1 || r <= -1 {
		return 0, 0, false
	}
	z := FisherZ(r)
	se := 1 / math.Sqrt(float64(n-3))
	return math.Tanh(z - 1.96*se), math.Tanh(z + 1.96*se), true
}

// FisherZDiff tests the difference of two independent correlations.
// Returns the z statistic and two-sided p. ok=false when either sample is
// too small for the transform's standard error.
func FisherZDiff(r1 float64, n1 int, r2 float64, n2 int) (z, p float64, ok bool) {
	if n1 < 4 || n2 < 4 {
		return 0, 0, false
	}
	se := math.Sqrt(1/float64(n1-3) + 1/float64(n2-3))
	z = (FisherZ(r1) - FisherZ(r2)) / se
	p = 2 * (1 - NormalCDF(math.Abs(z)))
	return z, p, true
}
