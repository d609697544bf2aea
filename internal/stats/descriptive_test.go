package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanSD(t *testing.T) {
	mean, sd, ok := MeanSD([]float64{10, 15, 20})
	require.True(t, ok)
	assert.InDelta(t, 15, mean, 1e-12)
	assert.InDelta(t, 5, sd, 1e-12)

	_, _, ok = MeanSD([]float64{42})
	assert.False(t, ok)
	_, _, ok = MeanSD(nil)
	assert.False(t, ok)
}

func TestQuantileInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	v, ok := Quantile(xs, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 2.5, v, 1e-12)

	v, _ = Quantile(xs, 0)
	assert.Equal(t, 1.0, v)
	v, _ = Quantile(xs, 1)
	assert.Equal(t, 4.0, v)

	// Input must stay untouched.
	unsorted := []float64{4, 1, 3, 2}
	_, _ = Quantile(unsorted, 0.25)
	assert.Equal(t, []float64{4, 1, 3, 2}, unsorted)
}

func TestZScore(t *testing.T) {
	assert.InDelta(t, 1.0, ZScore(20, 15, 5), 1e-12)
	assert.InDelta(t, -1.0, ZScore(10, 15, 5), 1e-12)
}
