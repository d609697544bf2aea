package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearsonSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := 5 + rng.Intn(50)
		x := make([]float64, n)
		y := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()
			y[i] = rng.NormFloat64()
		}
		rxy, ok1 := Pearson(x, y)
		ryx, ok2 := Pearson(y, x)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.InDelta(t, rxy, ryx, 1e-12)
		assert.LessOrEqual(t, math.Abs(rxy), 1.0)
	}
}

func TestPearsonPerfectLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 7
	}
	r, ok := Pearson(x, y)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestPearsonZeroVariance(t *testing.T) {
	x := []float64{2, 2, 2, 2}
	y := []float64{1, 2, 3, 4}
	r, ok := Pearson(x, y)
	assert.False(t, ok)
	assert.Equal(t, 0.0, r)
}

func TestSpearmanTies(t *testing.T) {
	// Spearman must survive ties via average ranks.
	x := []float64{1, 2, 2, 3}
	y := []float64{10, 20, 20, 30}
	r, ok := Spearman(x, y)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestSpearmanMonotoneInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := make([]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		x[i] = rng.NormFloat64()
		y[i] = rng.NormFloat64()
	}
	r1, ok := Spearman(x, y)
	require.True(t, ok)

	// exp is strictly increasing, so ranks are unchanged.
	xt := make([]float64, len(x))
	for i, v := range x {
		xt[i] = math.Exp(v)
	}
	r2, ok := Spearman(xt, y)
	require.True(t, ok)
	assert.InDelta(t, r1, r2, 1e-12)
}

func TestRanksAverageTies(t *testing.T) {
	ranks := Ranks([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
}

func TestFisherCIContainsEstimate(t *testing.T) {
	for _, r := range []float64{-0.8, -0.3, 0, 0.4, 0.9} {
		lo, hi, ok := FisherCI(r, 50)
		require.True(t, ok)
		assert.LessOrEqual(t, lo, r)
		assert.GreaterOrEqual(t, hi, r)
	}
}

func TestFisherCINarrowsWithN(t *testing.T) {
	r := 0.5
	prevWidth := math.Inf(1)
	for _, n := range []int{10, 50, 200, 1000} {
		lo, hi, ok := FisherCI(r, n)
		require.True(t, ok)
		width := hi - lo
		assert.Less(t, width, prevWidth)
		prevWidth = width
	}
}

func TestFisherCIUndefined(t *testing.T) {
	_, _, ok := FisherCI(0.5, 3)
	assert.False(t, ok)
	_, _, ok = FisherCI(1.0, 100)
	assert.False(t, ok)
}

func TestFisherZDiff(t *testing.T) {
	z, p, ok := FisherZDiff(0.5, 100, 0.5, 100)
	require.True(t, ok)
	assert.InDelta(t, 0.0, z, 1e-12)
	assert.InDelta(t, 1.0, p, 1e-9)

	_, p, ok = FisherZDiff(0.9, 200, 0.1, 200)
	require.True(t, ok)
	assert.Less(t, p, 0.001)
}
