package stats

import "math"

// pivotEpsilon marks a matrix as singular during inversion.
const pivotEpsilon = 1e-10

// InvertMatrix inverts a square matrix in place-free fashion via
// Gauss-Jordan elimination with partial pivoting. ok=false when a pivot
// falls below epsilon (singular or near-singular input).
func InvertMatrix(m [][]float64) ([][]float64, bool) {
	n := len(m)
	if n == 0 {
		return nil, false
	}

	// Augment [m | I].
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		if len(m[i]) != n {
			return nil, false
		}
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		// Partial pivot: pick the largest magnitude in this column.
		pivotRow := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivotRow][col]) {
				pivotRow = r
			}
		}
		if math.Abs(aug[pivotRow][col]) < pivotEpsilon {
			return nil, false
		}
		aug[col], aug[pivotRow] = aug[pivotRow], aug[col]

		pivot := aug[col][col]
		for c := 0; c < 2*n; c++ {
			aug[col][c] /= pivot
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = aug[i][n:]
	}
	return inv, true
}

// OLS solves ordinary least squares via the normal equations, prepending an
// intercept column. Returns the coefficient vector (intercept first) and R².
// ok=false when X'X is singular or the system is underdetermined.
func OLS(x [][]float64, y []float64) (coefs []float64, r2 float64, ok bool) {
	return ridgeFit(x, y, 0)
}

// Ridge solves L2-regularized least squares with the intercept unpenalized.
func Ridge(x [][]float64, y []float64, lambda float64) (coefs []float64, r2 float64, ok bool) {
	return ridgeFit(x, y, lambda)
}

func ridgeFit(x [][]float64, y []float64, lambda float64) ([]float64, float64, bool) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, 0, false
	}
	p := len(x[0]) + 1 // predictors plus intercept
	if n <= p-1 {
		return nil, 0, false
	}

	// Design matrix with intercept column prepended.
	design := make([][]float64, n)
	for i := 0; i < n; i++ {
		if len(x[i]) != p-1 {
			return nil, 0, false
		}
		design[i] = make([]float64, p)
		design[i][0] = 1
		copy(design[i][1:], x[i])
	}

	// X'X + λI (intercept row/col unpenalized) and X'y.
	xtx := make([][]float64, p)
	xty := make([]float64, p)
	for a := 0; a < p; a++ {
		xtx[a] = make([]float64, p)
		for b := 0; b < p; b++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += design[i][a] * design[i][b]
			}
			xtx[a][b] = sum
		}
		if a > 0 {
			xtx[a][a] += lambda
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += design[i][a] * y[i]
		}
		xty[a] = sum
	}

	inv, ok := InvertMatrix(xtx)
	if !ok {
		return nil, 0, false
	}

	coefs := make([]float64, p)
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			coefs[a] += inv[a][b] * xty[b]
		}
	}

	// R² against the mean model.
	meanY, _ := Mean(y)
	var ssTot, ssRes float64
	for i := 0; i < n; i++ {
		pred := coefs[0]
		for j := 1; j < p; j++ {
			pred += coefs[j] * design[i][j]
		}
		ssRes += (y[i] - pred) * (y[i] - pred)
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTot == 0 {
		return coefs, 0, true
	}
	return coefs, 1 - ssRes/ssTot, true
}

// Predict applies a coefficient vector (intercept first) to a feature row.
func Predict(coefs []float64, features []float64) float64 {
	pred := coefs[0]
	for j, f := range features {
		pred += coefs[j+1] * f
	}
	return pred
}
