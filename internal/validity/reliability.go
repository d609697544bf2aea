package validity

import (
	"math"
	"math/rand"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// defaultDecayGamma is the response-time decay exponent of the per-trial
// scoring rule. The cross-validated scorer can search over a grid around it.
const defaultDecayGamma = 0.35

// omegaMinN is the statistical minimum for the single-factor omega estimate.
const omegaMinN = 20

// Interval is a [lo, hi] 95% confidence interval.
type Interval [2]float64

// ReliabilityResult carries the reliability block of the response.
type ReliabilityResult struct {
	IHSSplitHalf     *float64  `json:"ihs_sb"`
	IHSSplitHalfCI   *Interval `json:"ihs_sb_ci95"`
	SplitHalfN       int       `json:"ihs_sb_n"`
	BenchmarkOmega   *float64  `json:"benchmark_omega"`
	BenchmarkOmegaCI *Interval `json:"benchmark_omega_ci95"`
	OmegaN           int       `json:"benchmark_omega_n"`
}

// trialScore applies the per-trial scoring rule: affirmation value times a
// monotonic time-decay multiplier, zero for "No" and timeouts.
func trialScore(t models.Trial, gamma float64) float64 {
	if t.Response == nil || !*t.Response {
		return 0
	}
	rt := t.ResponseTimeMs
	if rt < 0 {
		rt = 0
	}
	return math.Exp(-gamma * rt / 1000)
}

// splitHalfScores partitions a session's trials by even/odd index and sums
// the per-trial scores for each half.
func splitHalfScores(trials []models.Trial, gamma float64) (even, odd float64) {
	for i, t := range trials {
		s := trialScore(t, gamma)
		if i%2 == 0 {
			even += s
		} else {
			odd += s
		}
	}
	return even, odd
}

// SpearmanBrown converts a half-test correlation to a full-test reliability
// estimate.
func SpearmanBrown(r float64) float64 {
	return 2 * r / (1 + r)
}

// Reliability computes split-half reliability of the behavioral score and
// single-factor omega of the benchmark, each with a bootstrap 95% CI, plus
// nothing else: attenuation lives in Disattenuate so callers can reuse it
// with alternate correlations.
func Reliability(ctx *Context, rng *rand.Rand, replicates int) ReliabilityResult {
	var out ReliabilityResult

	// Split-half over sessions with enough trials.
	var evens, odds []float64
	for i := range ctx.Records {
		trials := ctx.Records[i].Trials
		if len(trials) < splitHalfMinTrls {
			continue
		}
		e, o := splitHalfScores(trials, defaultDecayGamma)
		evens = append(evens, e)
		odds = append(odds, o)
	}
	out.SplitHalfN = len(evens)
	if sb, ok := splitHalfFromVectors(ctx.Method, evens, odds); ok {
		out.IHSSplitHalf = Float(sb)
		if lo, hi, ciOK := stats.BootstrapCI(len(evens), replicates, rng, func(idx []int) (float64, bool) {
			re := make([]float64, len(idx))
			ro := make([]float64, len(idx))
			for k, j := range idx {
				re[k] = evens[j]
				ro[k] = odds[j]
			}
			return splitHalfFromVectors(ctx.Method, re, ro)
		}); ciOK {
			out.IHSSplitHalfCI = &Interval{lo, hi}
		}
	}

	// Omega over records with all three z-scores present.
	zCols := completeZColumns(ctx, nil)
	out.OmegaN = len(zCols[0])
	if omega, ok := omegaFromColumns(zCols); ok {
		out.BenchmarkOmega = Float(omega)
		if lo, hi, ciOK := stats.BootstrapCI(len(zCols[0]), replicates, rng, func(idx []int) (float64, bool) {
			resampled := make([][]float64, len(zCols))
			for c := range zCols {
				resampled[c] = make([]float64, len(idx))
				for k, j := range idx {
					resampled[c][k] = zCols[c][j]
				}
			}
			return omegaFromColumns(resampled)
		}); ciOK {
			out.BenchmarkOmegaCI = &Interval{lo, hi}
		}
	}

	return out
}

func splitHalfFromVectors(method stats.Method, evens, odds []float64) (float64, bool) {
	if len(evens) < splitHalfMinTrls {
		return 0, false
	}
	r, ok := stats.Corr(method, evens, odds)
	if !ok || r <= -1 {
		return 0, false
	}
	return SpearmanBrown(r), true
}

// completeZColumns collects the standardized scale columns restricted to
// records where every (non-excluded) scale z is available.
func completeZColumns(ctx *Context, exclude map[string]bool) [][]float64 {
	scales := make([]string, 0, len(ScaleIDs))
	for _, s := range ScaleIDs {
		if !exclude[s] {
			scales = append(scales, s)
		}
	}
	cols := make([][]float64, len(scales))
	for i := range ctx.Records {
		row := make([]float64, len(scales))
		complete := true
		for c, scale := range scales {
			z, ok := ctx.Z(&ctx.Records[i], scale)
			if !ok {
				complete = false
				break
			}
			row[c] = z
		}
		if !complete {
			continue
		}
		for c := range scales {
			cols[c] = append(cols[c], row[c])
		}
	}
	return cols
}

// omegaFromColumns fits a single latent factor to the indicator columns via
// power iteration on their covariance matrix and returns McDonald's omega.
func omegaFromColumns(cols [][]float64) (float64, bool) {
	if len(cols) < 2 || len(cols[0]) < omegaMinN {
		return 0, false
	}
	cov, ok := stats.Covariance(cols)
	if !ok {
		return 0, false
	}
	eigenvalue, eigenvector, ok := stats.DominantEigen(cov)
	if !ok || eigenvalue <= 0 {
		return 0, false
	}

	var sumSq, sumErr float64
	for _, v := range eigenvector {
		loading := v * math.Sqrt(eigenvalue)
		sumSq += loading * loading
		sumErr += 1 - loading*loading
	}
	if sumErr < 0 {
		sumErr = 0
	}
	denom := sumSq + sumErr
	if denom <= 0 {
		return 0, false
	}
	omega := sumSq / denom
	if omega > 1 {
		omega = 1
	}
	return omega, true
}

// Disattenuate corrects an observed correlation for unreliability in both
// measures, clamped to [-1, 1]. nil when either reliability is missing or
// non-positive.
func Disattenuate(r float64, relA, relB *float64) *float64 {
	if relA == nil || relB == nil {
		return nil
	}
	product := *relA * *relB
	if product <= 0 || math.IsInf(product, 0) || math.IsNaN(product) {
		return nil
	}
	corrected := r / math.Sqrt(product)
	if corrected > 1 {
		corrected = 1
	}
	if corrected < -1 {
		corrected = -1
	}
	return Float(corrected)
}
