package stats

import "math"

// powerIterations is fixed: convergence for the 3x3 covariance matrices this
// engine feeds in is far faster, and a fixed count keeps the routine pure.
const powerIterations = 150

// DominantEigen extracts the largest eigenvalue and its eigenvector from a
// symmetric matrix via power iteration with per-step normalization.
// ok=false for empty or degenerate (all-zero) input.
func DominantEigen(m [][]float64) (eigenvalue float64, eigenvector []float64, ok bool) {
	n := len(m)
	if n == 0 {
		return 0, nil, false
	}
	for _, row := range m {
		if len(row) != n {
			return 0, nil, false
		}
	}

	v := make([]float64, n)
	for i := range v {
		v[i] = 1 / math.Sqrt(float64(n))
	}

	next := make([]float64, n)
	for iter := 0; iter < powerIterations; iter++ {
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += m[i][j] * v[j]
			}
			next[i] = sum
		}
		norm := vectorNorm(next)
		if norm < 1e-12 {
			return 0, nil, false
		}
		for i := range v {
			v[i] = next[i] / norm
		}
	}

	// Rayleigh quotient for the eigenvalue.
	var num float64
	for i := 0; i < n; i++ {
		var mv float64
		for j := 0; j < n; j++ {
			mv += m[i][j] * v[j]
		}
		num += v[i] * mv
	}
	return num, v, true
}

// Covariance builds the sample covariance matrix of column vectors.
// cols[k] is the k-th variable's observations; all must share a length ≥ 2.
func Covariance(cols [][]float64) ([][]float64, bool) {
	k := len(cols)
	if k == 0 {
		return nil, false
	}
	n := len(cols[0])
	if n < 2 {
		return nil, false
	}
	means := make([]float64, k)
	for j, col := range cols {
		if len(col) != n {
			return nil, false
		}
		means[j], _ = Mean(col)
	}

	cov := make([][]float64, k)
	for a := 0; a < k; a++ {
		cov[a] = make([]float64, k)
		for b := 0; b <= a; b++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += (cols[a][i] - means[a]) * (cols[b][i] - means[b])
			}
			c := sum / float64(n-1)
			cov[a][b] = c
			cov[b][a] = c
		}
	}
	return cov, true
}

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
