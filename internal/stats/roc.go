package stats

import "sort"

// ROCPoint is one (FPR, TPR) pair on the curve.
type ROCPoint struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

// AUC computes the area under the ROC curve via the Mann-Whitney U
// statistic on average ranks (ties handled). ok=false when either class is
// empty rather than a fabricated 0.
func AUC(scores []float64, labels []bool) (float64, bool) {
	if len(scores) != len(labels) || len(scores) == 0 {
		return 0, false
	}
	var nPos, nNeg int
	for _, l := range labels {
		if l {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}

	ranks := Ranks(scores)
	var rankSumPos float64
	for i, l := range labels {
		if l {
			rankSumPos += ranks[i]
		}
	}
	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), true
}

// ROCCurve sweeps the predictor's unique values as thresholds, most extreme
// first, and downsamples to at most maxPoints (FPR, TPR) pairs.
func ROCCurve(scores []float64, labels []bool, maxPoints int) []ROCPoint {
	if len(scores) != len(labels) || len(scores) == 0 {
		return nil
	}
	var nPos, nNeg int
	for _, l := range labels {
		if l {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil
	}

	thresholds := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(thresholds)))
	thresholds = dedupe(thresholds)

	points := make([]ROCPoint, 0, len(thresholds)+2)
	points = append(points, ROCPoint{FPR: 0, TPR: 0})
	for _, th := range thresholds {
		var tp, fp int
		for i, s := range scores {
			if s >= th {
				if labels[i] {
					tp++
				} else {
					fp++
				}
			}
		}
		points = append(points, ROCPoint{
			FPR: float64(fp) / float64(nNeg),
			TPR: float64(tp) / float64(nPos),
		})
	}
	points = append(points, ROCPoint{FPR: 1, TPR: 1})

	if maxPoints > 2 && len(points) > maxPoints {
		down := make([]ROCPoint, 0, maxPoints)
		step := float64(len(points)-1) / float64(maxPoints-1)
		for i := 0; i < maxPoints; i++ {
			down = append(down, points[int(float64(i)*step+0.5)])
		}
		down[len(down)-1] = points[len(points)-1]
		points = down
	}
	return points
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
