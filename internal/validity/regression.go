package validity

import (
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// regressionMinN is the statistical minimum for the nested-model comparison.
const regressionMinN = 20

// RegressionResult is the incremental-validity block. Because the base
// predictors are the same scales the benchmark averages, this is an
// internal-consistency check; the leave-one-out comparison is the
// independent one.
type RegressionResult struct {
	N       int      `json:"n"`
	R2Base  *float64 `json:"r2_base"`
	R2Full  *float64 `json:"r2_full"`
	DeltaR2 *float64 `json:"delta_r2"`
	F       *float64 `json:"f"`
	P       *float64 `json:"p"`
}

// IncrementalValidity fits two nested OLS models predicting the benchmark:
// base = standardized scale z-scores, full = base + standardized behavioral
// score. The ΔR² F-test p-value comes from the custom F CDF.
func IncrementalValidity(ctx *Context, score []float64) RegressionResult {
	var out RegressionResult

	// Rows need all three scale z's, a benchmark and a predictor value.
	var baseX, fullX [][]float64
	var y []float64

	preds, bench, idx := ctx.BenchmarkPairs(score)

	// Standardize the predictor over the included rows.
	predMean, predSD, predOK := stats.MeanSD(preds)
	if !predOK || predSD <= 0 {
		out.N = len(bench)
		return out
	}

	for k, recIdx := range idx {
		rec := &ctx.Records[recIdx]
		row := make([]float64, 0, len(ScaleIDs))
		complete := true
		for _, scale := range ScaleIDs {
			z, ok := ctx.Z(rec, scale)
			if !ok {
				complete = false
				break
			}
			row = append(row, z)
		}
		if !complete {
			continue
		}
		baseX = append(baseX, row)
		fullRow := append(append([]float64(nil), row...), stats.ZScore(preds[k], predMean, predSD))
		fullX = append(fullX, fullRow)
		y = append(y, bench[k])
	}

	out.N = len(y)
	if out.N < regressionMinN {
		return out
	}

	_, r2Base, okBase := stats.OLS(baseX, y)
	_, r2Full, okFull := stats.OLS(fullX, y)
	if !okBase || !okFull {
		return out
	}

	out.R2Base = Float(r2Base)
	out.R2Full = Float(r2Full)
	delta := r2Full - r2Base
	out.DeltaR2 = Float(delta)

	df1 := len(fullX[0]) - len(baseX[0])
	df2 := out.N - len(fullX[0]) - 1
	if df1 <= 0 || df2 <= 0 {
		return out
	}
	denom := (1 - r2Full) / float64(df2)
	if denom <= 0 {
		return out
	}
	f := (delta / float64(df1)) / denom
	if f < 0 {
		f = 0
	}
	out.F = Float(f)
	if cdf, ok := stats.FCDF(f, df1, df2); ok {
		out.P = Float(1 - cdf)
	}
	return out
}
