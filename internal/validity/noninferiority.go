package validity

import (
	"math"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// DefaultNonInferiorityMargin is the equivalence margin on the correlation
// difference.
const DefaultNonInferiorityMargin = 0.05

// LOOComparison is one questionnaire's head-to-head against the behavioral
// score on that questionnaire's leave-one-out benchmark.
type LOOComparison struct {
	Scale  string   `json:"scale"`
	N      int      `json:"n"`
	RScale *float64 `json:"r_scale"`
	RIHS   *float64 `json:"r_ihs"`
}

// NonInferiorityResult is the response block for the leave-one-out test.
type NonInferiorityResult struct {
	Comparisons []LOOComparison `json:"comparisons"`
	Reference   string          `json:"reference,omitempty"`
	RBest       *float64        `json:"r_best"`
	RIHS        *float64        `json:"r_ihs"`
	Gap         *float64        `json:"gap"`
	Z           *float64        `json:"z"`
	P           *float64        `json:"p"`
	Margin      float64         `json:"margin"`
	Pass        *bool           `json:"pass"`
}

// NonInferiority compares the behavioral score against each questionnaire on
// that questionnaire's leave-one-out benchmark, picks the strongest
// questionnaire as reference, and tests the correlation difference with a
// Fisher z test plus an equivalence margin.
func NonInferiority(ctx *Context, score []float64) NonInferiorityResult {
	out := NonInferiorityResult{Margin: DefaultNonInferiorityMargin}

	var refComparison *LOOComparison
	var refN int
	for _, scale := range ScaleIDs {
		var looVals, scaleVals, scoreVals []float64
		for i := range ctx.Records {
			rec := &ctx.Records[i]
			loo, ok := ctx.LOOBenchmark(rec, scale)
			if !ok {
				continue
			}
			sv := rec.ScaleTotal(scale)
			if sv == nil {
				continue
			}
			looVals = append(looVals, loo)
			scaleVals = append(scaleVals, *sv)
			scoreVals = append(scoreVals, score[i])
		}

		cmp := LOOComparison{Scale: scale, N: len(looVals)}
		rScale, okScale := stats.Corr(ctx.Method, scaleVals, looVals)
		rIHS, okIHS := stats.Corr(ctx.Method, scoreVals, looVals)
		if okScale {
			cmp.RScale = Float(rScale)
		}
		if okIHS {
			cmp.RIHS = Float(rIHS)
		}
		out.Comparisons = append(out.Comparisons, cmp)

		if okScale && okIHS {
			if refComparison == nil || math.Abs(rScale) > math.Abs(*refComparison.RScale) {
				c := cmp
				refComparison = &c
				refN = cmp.N
			}
		}
	}

	if refComparison == nil {
		return out
	}

	out.Reference = refComparison.Scale
	out.RBest = refComparison.RScale
	out.RIHS = refComparison.RIHS
	gap := *refComparison.RScale - *refComparison.RIHS
	out.Gap = Float(gap)

	if z, p, ok := stats.FisherZDiff(*refComparison.RIHS, refN, *refComparison.RScale, refN); ok {
		out.Z = Float(z)
		out.P = Float(p)
	}

	pass := gap <= out.Margin
	out.Pass = &pass
	return out
}
