package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominantEigenDiagonal(t *testing.T) {
	m := [][]float64{
		{5, 0, 0},
		{0, 2, 0},
		{0, 0, 1},
	}
	val, vec, ok := DominantEigen(m)
	require.True(t, ok)
	assert.InDelta(t, 5.0, val, 1e-9)
	assert.InDelta(t, 1.0, math.Abs(vec[0]), 1e-6)
	assert.InDelta(t, 0.0, vec[1], 1e-6)
	assert.InDelta(t, 0.0, vec[2], 1e-6)
}

func TestDominantEigenSymmetric(t *testing.T) {
	// Eigenvalues of [[2,1],[1,2]] are 3 and 1.
	m := [][]float64{
		{2, 1},
		{1, 2},
	}
	val, vec, ok := DominantEigen(m)
	require.True(t, ok)
	assert.InDelta(t, 3.0, val, 1e-9)
	assert.InDelta(t, math.Abs(vec[0]), math.Abs(vec[1]), 1e-9)
}

func TestDominantEigenDegenerate(t *testing.T) {
	m := [][]float64{
		{0, 0},
		{0, 0},
	}
	_, _, ok := DominantEigen(m)
	assert.False(t, ok)
}

func TestCovariance(t *testing.T) {
	cols := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
	}
	cov, ok := Covariance(cols)
	require.True(t, ok)
	assert.InDelta(t, 1.0, cov[0][0], 1e-12)
	assert.InDelta(t, 2.0, cov[0][1], 1e-12)
	assert.InDelta(t, 2.0, cov[1][0], 1e-12)
	assert.InDelta(t, 4.0, cov[1][1], 1e-12)
}
