package validity

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// Fixed blend weights for the tuned scoring modes.
const (
	tunedWeightN1 = 0.6
	tunedWeightN2 = 0.25
	tunedWeightN3 = 0.15
	n12WeightN1   = 0.7
	n12WeightN2   = 0.3
)

// Cross-validation bounds: k = clamp(sqrt(n/10), 3, 5).
const (
	cvMinFolds = 3
	cvMaxFolds = 5
	cvMinN     = 20
)

// Card features must appear in at least this share of sessions, or rank in
// the top cardFeatureCap by support, to bound dimensionality.
const (
	cardSupportFrac = 0.25
	cardFeatureCap  = 24
)

// rtGammaGrid is the response-time decay exponent grid searched when
// rtLearn is on.
var rtGammaGrid = []float64{0.0, 0.15, 0.35, 0.6, 1.0}

// CVInfo reports what the cross-validated modes actually learned. Held-out
// correlation is the only number callers may trust; in-sample fit from these
// modes is deliberately not exposed.
type CVInfo struct {
	Mode        ScoreMode          `json:"mode"`
	Folds       int                `json:"folds,omitempty"`
	N           int                `json:"n"`
	HeldOutR    *float64           `json:"heldout_r"`
	MeanWeights map[string]float64 `json:"mean_weights,omitempty"`
	MeanGamma   *float64           `json:"mean_gamma,omitempty"`
	Lambda      float64            `json:"lambda,omitempty"`
}

// Score produces the per-session predictor for the configured mode, aligned
// with ctx.Records. CV modes return held-out predictions so downstream
// statistics are not inflated by in-sample fit.
func Score(ctx *Context, opts Options, rng *rand.Rand) ([]float64, *CVInfo) {
	switch opts.Score {
	case ScoreTuned:
		return blendScore(ctx, []blendTerm{
			{feature: featN1, weight: tunedWeightN1},
			{feature: featN2, weight: tunedWeightN2},
			{feature: featN3, weight: tunedWeightN3},
		}), nil
	case ScoreN1:
		score := make([]float64, len(ctx.Records))
		for i := range ctx.Records {
			score[i] = ctx.Records[i].N1
		}
		return score, nil
	case ScoreN12:
		return blendScore(ctx, []blendTerm{
			{feature: featN1, weight: n12WeightN1},
			{feature: featN2, weight: n12WeightN2},
		}), nil
	case ScoreCV, ScoreCVDomain, ScoreCVCard:
		return cvScore(ctx, opts, rng)
	default: // ScoreRaw
		score := make([]float64, len(ctx.Records))
		for i := range ctx.Records {
			score[i] = ctx.Records[i].IHS
		}
		return score, nil
	}
}

type featureID int

const (
	featN1 featureID = iota
	featN2
	featN3
)

type blendTerm struct {
	feature featureID
	weight  float64
}

// blendScore standardizes each component over the filtered population and
// applies fixed weights. Degenerate components contribute zero.
func blendScore(ctx *Context, terms []blendTerm) []float64 {
	n := len(ctx.Records)
	score := make([]float64, n)
	for _, term := range terms {
		col := make([]float64, n)
		for i := range ctx.Records {
			col[i] = componentValue(&ctx.Records[i], term.feature)
		}
		mean, sd, ok := stats.MeanSD(col)
		if !ok || sd <= 0 {
			continue
		}
		for i := range col {
			score[i] += term.weight * stats.ZScore(col[i], mean, sd)
		}
	}
	return score
}

func componentValue(rec *JoinedRecord, f featureID) float64 {
	switch f {
	case featN2:
		return rec.N2
	case featN3:
		return rec.N3
	default:
		return rec.N1
	}
}

// featureMatrix builds the feature rows for a CV mode at a given decay
// exponent. Feature names are stable across rows.
func featureMatrix(ctx *Context, mode ScoreMode, gamma float64, rtDerived bool) (names []string, rows [][]float64) {
	switch mode {
	case ScoreCVDomain:
		return domainFeatures(ctx, gamma)
	case ScoreCVCard:
		return cardFeatures(ctx, gamma)
	default:
		names = []string{"n1", "n2", "n3"}
		rows = make([][]float64, len(ctx.Records))
		for i := range ctx.Records {
			rec := &ctx.Records[i]
			n1 := rec.N1
			if rtDerived {
				// Replace N1 with the trial-derived decayed affirmation sum
				// so the exponent search has something to act on.
				n1 = decayedAffirmationSum(rec, gamma)
			}
			rows[i] = []float64{n1, rec.N2, rec.N3}
		}
		return names, rows
	}
}

func decayedAffirmationSum(rec *JoinedRecord, gamma float64) float64 {
	var sum float64
	for _, t := range rec.Trials {
		sum += trialScore(t, gamma)
	}
	return sum
}

// domainFeatures sums per-trial scores per card domain.
func domainFeatures(ctx *Context, gamma float64) ([]string, [][]float64) {
	domainSet := map[string]bool{}
	for i := range ctx.Records {
		for _, t := range ctx.Records[i].Trials {
			if t.Domain != "" {
				domainSet[t.Domain] = true
			}
		}
	}
	names := make([]string, 0, len(domainSet))
	for d := range domainSet {
		names = append(names, d)
	}
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for i, d := range names {
		index[d] = i
	}

	rows := make([][]float64, len(ctx.Records))
	for i := range ctx.Records {
		row := make([]float64, len(names))
		for _, t := range ctx.Records[i].Trials {
			if j, ok := index[t.Domain]; ok {
				row[j] += trialScore(t, gamma)
			}
		}
		rows[i] = row
	}
	return names, rows
}

// cardFeatures builds per-card affirmation features, pre-filtered to cards
// with support in at least cardSupportFrac of sessions or the top
// cardFeatureCap by support. Support is computed on the full filtered
// population before cross-validation; this is a documented mild leakage
// (feature *selection* only, not fitting) kept to match the original
// statistical intent.
func cardFeatures(ctx *Context, gamma float64) ([]string, [][]float64) {
	support := map[int]int{}
	for i := range ctx.Records {
		seen := map[int]bool{}
		for _, t := range ctx.Records[i].Trials {
			if t.Response != nil && *t.Response && !seen[t.CardID] {
				support[t.CardID]++
				seen[t.CardID] = true
			}
		}
	}

	type cardSupport struct {
		card  int
		count int
	}
	ranked := make([]cardSupport, 0, len(support))
	for card, count := range support {
		ranked = append(ranked, cardSupport{card, count})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].count != ranked[b].count {
			return ranked[a].count > ranked[b].count
		}
		return ranked[a].card < ranked[b].card
	})

	minSupport := int(math.Ceil(cardSupportFrac * float64(len(ctx.Records))))
	kept := make([]int, 0, cardFeatureCap)
	for rank, cs := range ranked {
		if cs.count >= minSupport || rank < cardFeatureCap {
			kept = append(kept, cs.card)
		}
		if len(kept) >= cardFeatureCap {
			break
		}
	}
	sort.Ints(kept)

	names := make([]string, len(kept))
	index := make(map[int]int, len(kept))
	for i, card := range kept {
		names[i] = "card_" + strconv.Itoa(card)
		index[card] = i
	}

	rows := make([][]float64, len(ctx.Records))
	for i := range ctx.Records {
		row := make([]float64, len(kept))
		for _, t := range ctx.Records[i].Trials {
			if j, ok := index[t.CardID]; ok {
				row[j] += trialScore(t, gamma)
			}
		}
		rows[i] = row
	}
	return names, rows
}

// cvScore runs k-fold ridge regression over the mode's features with
// per-fold standardization (training split only, no leakage) and an
// optional decay-exponent grid search inside each training fold.
func cvScore(ctx *Context, opts Options, rng *rand.Rand) ([]float64, *CVInfo) {
	info := &CVInfo{Mode: opts.Score, Lambda: opts.Lambda}

	// Rows with a benchmark are the supervised set.
	raw := make([]float64, len(ctx.Records))
	for i := range ctx.Records {
		raw[i] = ctx.Records[i].IHS
	}
	_, bench, benchIdx := ctx.BenchmarkPairs(raw)
	info.N = len(bench)
	if len(bench) < cvMinN {
		return raw, info
	}

	k := int(math.Sqrt(float64(len(bench)) / 10))
	if k < cvMinFolds {
		k = cvMinFolds
	}
	if k > cvMaxFolds {
		k = cvMaxFolds
	}
	info.Folds = k

	// Fold assignment comes from the request-seeded RNG: identical
	// configuration and seed means identical partitions.
	perm := rng.Perm(len(bench))
	fold := make([]int, len(bench))
	for pos, idx := range perm {
		fold[idx] = pos % k
	}

	rtDerived := opts.RTDenoise || opts.RTLearn
	gammas := []float64{defaultDecayGamma}
	if opts.RTLearn {
		gammas = rtGammaGrid
	}

	heldOut := make([]float64, len(bench))
	covered := make([]bool, len(bench))
	var weightSums []float64
	var featureNames []string
	var gammaSum float64
	validFolds := 0

	for f := 0; f < k; f++ {
		var trainIdx, testIdx []int
		for i := range bench {
			if fold[i] == f {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(trainIdx) < cvMinFolds || len(testIdx) == 0 {
			continue
		}

		bestGamma := gammas[0]
		var bestCoefs []float64
		var bestStd foldStandardizer
		var bestNames []string
		bestR := math.Inf(-1)

		for _, gamma := range gammas {
			names, rows := featureMatrix(ctx, opts.Score, gamma, rtDerived)
			trainX := pickRows(rows, benchIdx, trainIdx)
			trainY := pickVals(bench, trainIdx)

			std := newFoldStandardizer(trainX)
			coefs, _, ok := stats.Ridge(std.apply(trainX), trainY, opts.Lambda)
			if !ok {
				continue
			}

			// In-fold correlation drives the exponent choice.
			trainPred := make([]float64, len(trainX))
			stdTrain := std.apply(trainX)
			for i := range stdTrain {
				trainPred[i] = stats.Predict(coefs, stdTrain[i])
			}
			r, rOK := stats.Corr(ctx.Method, trainPred, trainY)
			if !rOK {
				continue
			}
			if r > bestR {
				bestR = r
				bestGamma = gamma
				bestCoefs = coefs
				bestStd = std
				bestNames = names
			}
		}
		if bestCoefs == nil {
			continue
		}

		// Evaluate on the held-out fold with the winning exponent.
		_, rows := featureMatrix(ctx, opts.Score, bestGamma, rtDerived)
		testX := bestStd.apply(pickRows(rows, benchIdx, testIdx))
		for i, t := range testIdx {
			heldOut[t] = stats.Predict(bestCoefs, testX[i])
			covered[t] = true
		}

		if weightSums == nil {
			weightSums = make([]float64, len(bestCoefs))
			featureNames = bestNames
		}
		if len(bestCoefs) == len(weightSums) {
			for i, c := range bestCoefs {
				weightSums[i] += c
			}
		}
		gammaSum += bestGamma
		validFolds++
	}

	if validFolds == 0 {
		return raw, info
	}

	// Rows in a skipped fold never received a prediction; the held-out
	// correlation uses only covered rows so their zeros cannot leak in.
	var hx, hy []float64
	for i := range bench {
		if covered[i] {
			hx = append(hx, heldOut[i])
			hy = append(hy, bench[i])
		}
	}
	if r, ok := stats.Corr(ctx.Method, hx, hy); ok {
		info.HeldOutR = Float(r)
	}
	info.MeanWeights = make(map[string]float64, len(weightSums))
	if len(weightSums) > 0 {
		info.MeanWeights["intercept"] = weightSums[0] / float64(validFolds)
		for i, name := range featureNames {
			if i+1 < len(weightSums) {
				info.MeanWeights[name] = weightSums[i+1] / float64(validFolds)
			}
		}
	}
	if rtDerived {
		info.MeanGamma = Float(gammaSum / float64(validFolds))
	}

	// Spread held-out predictions back onto the full record set; rows
	// without a benchmark, or in a skipped fold, keep their raw IHS so
	// downstream joins still have a value.
	score := append([]float64(nil), raw...)
	for i, recIdx := range benchIdx {
		if covered[i] {
			score[recIdx] = heldOut[i]
		}
	}
	return score, info
}

// foldStandardizer holds per-feature training-split moments.
type foldStandardizer struct {
	means []float64
	sds   []float64
}

func newFoldStandardizer(trainX [][]float64) foldStandardizer {
	if len(trainX) == 0 {
		return foldStandardizer{}
	}
	p := len(trainX[0])
	std := foldStandardizer{means: make([]float64, p), sds: make([]float64, p)}
	col := make([]float64, len(trainX))
	for j := 0; j < p; j++ {
		for i := range trainX {
			col[i] = trainX[i][j]
		}
		mean, sd, ok := stats.MeanSD(col)
		std.means[j] = mean
		if ok && sd > 0 {
			std.sds[j] = sd
		} else {
			std.sds[j] = 1 // degenerate feature contributes a constant zero
		}
	}
	return std
}

func (s foldStandardizer) apply(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		std := make([]float64, len(row))
		for j, v := range row {
			if j < len(s.means) {
				std[j] = (v - s.means[j]) / s.sds[j]
			}
		}
		out[i] = std
	}
	return out
}

func pickRows(rows [][]float64, benchIdx []int, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[benchIdx[j]]
	}
	return out
}

func pickVals(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
