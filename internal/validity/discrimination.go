package validity

import (
	"math/rand"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// rocCurvePoints bounds the downsampled ROC curve returned to callers.
const rocCurvePoints = 60

// ROCResult carries the discrimination block: AUC of the behavioral score
// against the high-benchmark label, comparison AUCs for each raw
// questionnaire against the same label, and the downsampled curve.
type ROCResult struct {
	AUC       *float64            `json:"auc"`
	CI95      *Interval           `json:"ci95"`
	N         int                 `json:"n"`
	Positives int                 `json:"positives"`
	ScaleAUCs map[string]*float64 `json:"scale_aucs"`
	Points    []stats.ROCPoint    `json:"points"`
}

// Discrimination labels the top quartile of benchmark values as positive and
// computes rank-based AUCs. score is aligned with ctx.Records.
func Discrimination(ctx *Context, score []float64, rng *rand.Rand, replicates int) ROCResult {
	out := ROCResult{ScaleAUCs: make(map[string]*float64, len(ScaleIDs))}

	preds, bench, idx := ctx.BenchmarkPairs(score)
	out.N = len(bench)
	if len(bench) == 0 {
		return out
	}

	q3, ok := stats.Quantile(bench, 0.75)
	if !ok {
		return out
	}
	labels := make([]bool, len(bench))
	for i, b := range bench {
		labels[i] = b >= q3
		if labels[i] {
			out.Positives++
		}
	}

	if auc, aucOK := stats.AUC(preds, labels); aucOK {
		out.AUC = Float(auc)
		if lo, hi, ciOK := stats.BootstrapCI(len(preds), replicates, rng, func(ridx []int) (float64, bool) {
			rs := make([]float64, len(ridx))
			rl := make([]bool, len(ridx))
			for k, j := range ridx {
				rs[k] = preds[j]
				rl[k] = labels[j]
			}
			return stats.AUC(rs, rl)
		}); ciOK {
			out.CI95 = &Interval{lo, hi}
		}
	}

	// Each raw questionnaire against the same label set, for comparison.
	for _, scale := range ScaleIDs {
		var svals []float64
		var slabels []bool
		for k, recIdx := range idx {
			if v := ctx.Records[recIdx].ScaleTotal(scale); v != nil {
				svals = append(svals, *v)
				slabels = append(slabels, labels[k])
			}
		}
		if auc, aucOK := stats.AUC(svals, slabels); aucOK {
			out.ScaleAUCs[scale] = Float(auc)
		} else {
			out.ScaleAUCs[scale] = nil
		}
	}

	out.Points = stats.ROCCurve(preds, labels, rocCurvePoints)
	return out
}
