package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvertMatrixKnown(t *testing.T) {
	m := [][]float64{
		{4, 7},
		{2, 6},
	}
	inv, ok := InvertMatrix(m)
	require.True(t, ok)
	assert.InDelta(t, 0.6, inv[0][0], 1e-10)
	assert.InDelta(t, -0.7, inv[0][1], 1e-10)
	assert.InDelta(t, -0.2, inv[1][0], 1e-10)
	assert.InDelta(t, 0.4, inv[1][1], 1e-10)
}

func TestInvertMatrixSingular(t *testing.T) {
	m := [][]float64{
		{1, 2},
		{2, 4},
	}
	_, ok := InvertMatrix(m)
	assert.False(t, ok)
}

func TestOLSRecoversCoefficients(t *testing.T) {
	// y = 2 + 3*x1 - 1.5*x2, no noise.
	rng := rand.New(rand.NewSource(3))
	n := 60
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := rng.NormFloat64()
		x2 := rng.NormFloat64()
		x[i] = []float64{x1, x2}
		y[i] = 2 + 3*x1 - 1.5*x2
	}
	coefs, r2, ok := OLS(x, y)
	require.True(t, ok)
	assert.InDelta(t, 2.0, coefs[0], 1e-8)
	assert.InDelta(t, 3.0, coefs[1], 1e-8)
	assert.InDelta(t, -1.5, coefs[2], 1e-8)
	assert.InDelta(t, 1.0, r2, 1e-10)
}

func TestRidgeShrinksCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 50
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := rng.NormFloat64()
		x[i] = []float64{v}
		y[i] = 4*v + 0.1*rng.NormFloat64()
	}
	olsCoefs, _, ok := OLS(x, y)
	require.True(t, ok)
	ridgeCoefs, _, ok := Ridge(x, y, 50)
	require.True(t, ok)
	assert.Less(t, ridgeCoefs[1], olsCoefs[1])
	assert.Greater(t, ridgeCoefs[1], 0.0)
}

func TestOLSUnderdetermined(t *testing.T) {
	x := [][]float64{{1, 2, 3}}
	y := []float64{1}
	_, _, ok := OLS(x, y)
	assert.False(t, ok)
}

func TestPredict(t *testing.T) {
	coefs := []float64{1, 2, 3}
	assert.InDelta(t, 1+2*4+3*5, Predict(coefs, []float64{4, 5}), 1e-12)
}
