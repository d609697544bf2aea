package validity

import (
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// CorrelationBlock is the primary convergent-validity result.
type CorrelationBlock struct {
	R    *float64  `json:"r"`
	N    int       `json:"n"`
	CI95 *Interval `json:"ci95"`
}

// ComponentBlock echoes one scale's standardization constants.
type ComponentBlock struct {
	Mean *float64 `json:"mean"`
	SD   *float64 `json:"sd"`
	N    int      `json:"n"`
}

// HypothesisRow is one predictor-vs-scale correlation with its CI.
type HypothesisRow struct {
	Predictor string    `json:"predictor"`
	Scale     string    `json:"scale"`
	R         *float64  `json:"r"`
	N         int       `json:"n"`
	CI95      *Interval `json:"ci95"`
}

// RobustnessBlock compares the primary correlation on the unfiltered join
// against the fully filtered population.
type RobustnessBlock struct {
	Base     CorrelationBlock `json:"base"`
	Filtered CorrelationBlock `json:"filtered"`
}

// SessionRow is the per-subject echo, gated by includePerSession.
type SessionRow struct {
	SessionID string   `json:"sessionId"`
	IHS       float64  `json:"ihs"`
	Score     float64  `json:"score"`
	Benchmark *float64 `json:"benchmark"`
}

// Report is the full response payload. Statistical absence is always a JSON
// null, never a fabricated zero.
type Report struct {
	NUsed          int                       `json:"n_used"`
	Method         stats.Method              `json:"method"`
	Correlation    CorrelationBlock          `json:"correlation"`
	Benchmark      map[string]ComponentBlock `json:"benchmark"`
	Reliability    ReliabilityResult         `json:"reliability"`
	Attenuation    *float64                  `json:"attenuation"`
	ROC            ROCResult                 `json:"roc"`
	Regression     RegressionResult          `json:"regression"`
	NonInferiority NonInferiorityResult      `json:"non_inferiority"`
	Robustness     RobustnessBlock           `json:"robustness"`
	Hypotheses     []HypothesisRow           `json:"hypotheses"`
	CV             *CVInfo                   `json:"cv"`
	Grader         GraderResult              `json:"grader"`
	FiltersEcho    map[string]any            `json:"filters_echo"`
	PerSession     []SessionRow              `json:"per_session,omitempty"`
}

// Engine is the stateless validity analyzer. One instance serves all
// requests; every invocation builds its own context and RNG.
type Engine struct {
	log     *zap.Logger
	catalog *models.ScaleCatalog
}

// NewEngine wires the analyzer with its logger and scale catalog.
func NewEngine(log *zap.Logger, catalog *models.ScaleCatalog) *Engine {
	if catalog == nil {
		catalog = models.DefaultScaleCatalog()
	}
	return &Engine{log: log, catalog: catalog}
}

// Analyze runs the full battery over the two record sets. It never returns
// an error for statistical reasons: insufficient data degrades individual
// fields to null while sibling computations proceed.
func (e *Engine) Analyze(entries []models.QuestionnaireEntry, sessions []models.ScanSession, opts Options) *Report {
	opts.Normalize()

	report := &Report{
		Method:      opts.Method,
		Benchmark:   map[string]ComponentBlock{},
		FiltersEcho: echoFilters(opts),
	}

	filtered, err := Join(entries, sessions, opts, e.catalog)
	if err != nil {
		if !errors.Is(err, ErrNoEntries) {
			e.log.Warn("join failed", zap.Error(err))
		}
		// Empty-result sentinel: a structurally complete report with nulls.
		report.Grader = Grade(GraderInput{N: 0})
		return report
	}

	// Randomness is request-scoped: bootstrap replicates and fold
	// assignment never share RNG state across concurrent requests.
	rng := rand.New(rand.NewSource(opts.Seed))

	ctx := NewContext(filtered, opts.Method)
	report.NUsed = len(filtered)
	for _, scale := range ScaleIDs {
		m := ctx.Moments(scale)
		block := ComponentBlock{N: m.N}
		if m.OK {
			block.Mean = Float(m.Mean)
			block.SD = Float(m.SD)
		}
		report.Benchmark[scale] = block
	}

	score, cvInfo := Score(ctx, opts, rng)
	report.CV = cvInfo

	// Primary convergent correlation.
	report.Correlation = correlate(ctx.Method, ctx, score)

	report.Reliability = Reliability(ctx, rng, opts.BootstrapReplicates)
	if report.Correlation.R != nil {
		report.Attenuation = Disattenuate(*report.Correlation.R,
			report.Reliability.IHSSplitHalf, report.Reliability.BenchmarkOmega)
	}

	report.ROC = Discrimination(ctx, score, rng, opts.BootstrapReplicates)
	report.Regression = IncrementalValidity(ctx, score)
	report.NonInferiority = NonInferiority(ctx, score)
	report.Hypotheses = e.hypotheses(ctx, score)
	report.Robustness = e.robustness(entries, sessions, opts, report.Correlation)

	if opts.IncludePerSession {
		report.PerSession = perSessionRows(ctx, score)
	}

	graderInput := GraderInput{
		N:           report.Correlation.N,
		R:           report.Correlation.R,
		SplitHalf:   report.Reliability.IHSSplitHalf,
		Omega:       report.Reliability.BenchmarkOmega,
		AUC:         report.ROC.AUC,
		DeltaR2:     report.Regression.DeltaR2,
		RegressionP: report.Regression.P,
		NonInfPass:  report.NonInferiority.Pass,
		NonInfGap:   report.NonInferiority.Gap,
	}
	if cvInfo != nil {
		graderInput.CVHeldOutR = cvInfo.HeldOutR
	}
	report.Grader = Grade(graderInput)

	e.log.Debug("analysis complete",
		zap.Int("n_used", report.NUsed),
		zap.String("method", string(opts.Method)),
		zap.String("score", string(opts.Score)),
		zap.String("verdict", string(report.Grader.Verdict)))

	return report
}

func correlate(method stats.Method, ctx *Context, score []float64) CorrelationBlock {
	x, y, _ := ctx.BenchmarkPairs(score)
	block := CorrelationBlock{N: len(x)}
	r, ok := stats.Corr(method, x, y)
	if !ok {
		return block
	}
	block.R = Float(r)
	if lo, hi, ciOK := stats.FisherCI(r, len(x)); ciOK {
		block.CI95 = &Interval{lo, hi}
	}
	return block
}

// hypotheses correlates the predictor with each scale's standardized total,
// plus the n1Scaled variant when the upstream producer supplies it.
func (e *Engine) hypotheses(ctx *Context, score []float64) []HypothesisRow {
	rows := make([]HypothesisRow, 0, len(ScaleIDs)+1)
	for _, scale := range ScaleIDs {
		var xs, ys []float64
		for i := range ctx.Records {
			if z, ok := ctx.Z(&ctx.Records[i], scale); ok {
				xs = append(xs, score[i])
				ys = append(ys, z)
			}
		}
		row := HypothesisRow{Predictor: "score", Scale: scale, N: len(xs)}
		if r, ok := stats.Corr(ctx.Method, xs, ys); ok {
			row.R = Float(r)
			if lo, hi, ciOK := stats.FisherCI(r, len(xs)); ciOK {
				row.CI95 = &Interval{lo, hi}
			}
		}
		rows = append(rows, row)
	}

	// n1Scaled against the benchmark, when present on enough sessions.
	var n1s, bench []float64
	for i := range ctx.Records {
		rec := &ctx.Records[i]
		if rec.N1Scaled == nil {
			continue
		}
		if b, ok := ctx.Benchmark(rec); ok {
			n1s = append(n1s, *rec.N1Scaled)
			bench = append(bench, b)
		}
	}
	if len(n1s) > 0 {
		row := HypothesisRow{Predictor: "n1_scaled", Scale: "benchmark", N: len(n1s)}
		if r, ok := stats.Corr(ctx.Method, n1s, bench); ok {
			row.R = Float(r)
			if lo, hi, ciOK := stats.FisherCI(r, len(n1s)); ciOK {
				row.CI95 = &Interval{lo, hi}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// robustness recomputes the raw-IHS correlation on an unfiltered join so
// callers can see how much the filters move the estimate.
func (e *Engine) robustness(entries []models.QuestionnaireEntry, sessions []models.ScanSession, opts Options, filtered CorrelationBlock) RobustnessBlock {
	base := Options{Limit: opts.Limit, Method: opts.Method}
	base.Normalize()

	out := RobustnessBlock{Filtered: filtered}
	recs, err := Join(entries, sessions, base, e.catalog)
	if err != nil {
		return out
	}
	baseCtx := NewContext(recs, opts.Method)
	raw := make([]float64, len(recs))
	for i := range recs {
		raw[i] = recs[i].IHS
	}
	out.Base = correlate(opts.Method, baseCtx, raw)
	return out
}

func perSessionRows(ctx *Context, score []float64) []SessionRow {
	rows := make([]SessionRow, 0, len(ctx.Records))
	for i := range ctx.Records {
		rec := &ctx.Records[i]
		row := SessionRow{SessionID: rec.SessionID, IHS: rec.IHS, Score: score[i]}
		if b, ok := ctx.Benchmark(rec); ok {
			row.Benchmark = Float(b)
		}
		rows = append(rows, row)
	}
	return rows
}

func echoFilters(opts Options) map[string]any {
	echo := map[string]any{
		"limit":             opts.Limit,
		"method":            string(opts.Method),
		"device":            opts.Device,
		"score":             string(opts.Score),
		"exclusive":         opts.Exclusive,
		"excludeTimeouts":   opts.ExcludeTimeouts,
		"iat":               opts.IAT,
		"sensitivityAllMax": opts.SensitivityAllMax,
		"rtDenoise":         opts.RTDenoise,
		"rtLearn":           opts.RTLearn,
	}
	if opts.Modality != "" {
		echo["modality"] = opts.Modality
	}
	if len(opts.Modalities) > 0 {
		echo["modalities"] = opts.Modalities
	}
	if opts.Threshold > 0 {
		echo["threshold"] = opts.Threshold
	}
	if opts.TrimIHS != nil {
		echo["trimIhs"] = *opts.TrimIHS
	}
	if opts.TrimScales != nil {
		echo["trimScales"] = *opts.TrimScales
	}
	if opts.Sex != "" {
		echo["sex"] = opts.Sex
	}
	if opts.Country != "" {
		echo["country"] = opts.Country
	}
	if len(opts.Countries) > 0 {
		echo["countries"] = opts.Countries
	}
	if len(opts.ExcludeCountries) > 0 {
		echo["excludeCountries"] = opts.ExcludeCountries
	}
	if opts.AgeMin != nil {
		echo["ageMin"] = *opts.AgeMin
	}
	if opts.AgeMax != nil {
		echo["ageMax"] = *opts.AgeMax
	}
	return echo
}
