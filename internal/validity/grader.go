package validity

import "fmt"

// Verdict labels form a fixed taxonomy.
type Verdict string

const (
	VerdictClearlyBetter  Verdict = "Clearly better"
	VerdictAtLeastAsGood  Verdict = "At least as good"
	VerdictPromising      Verdict = "Promising but needs more data"
	VerdictNotCompetitive Verdict = "Not yet competitive"
	VerdictInconclusive   Verdict = "Inconclusive"
)

// Grading thresholds. Named so an audit or recalibration touches one place.
const (
	GraderMinN            = 30   // below this nothing is concluded
	GraderSmallSampleN    = 200  // below this a sample-size warning is attached
	GraderMinReliability  = 0.75 // split-half / omega floor before warnings
	GraderStrongR         = 0.50 // convergent correlation for "at least as good"
	GraderPromisingR      = 0.40 // enough signal to keep collecting
	GraderWeakR           = 0.30 // below this the score is not competitive
	GraderStrongAUC       = 0.75 // discrimination for "clearly better"
	GraderAcceptableAUC   = 0.70 // discrimination floor for "at least as good"
	GraderSuperiorityEdge = 0.05 // r_ihs must beat r_best by this for superiority
	GraderDeltaR2Floor    = 0.01 // minimum incremental ΔR² that counts
	GraderSignificanceP   = 0.05
)

// GraderInput gathers the upstream module outputs the verdict synthesizes.
type GraderInput struct {
	N           int
	R           *float64
	SplitHalf   *float64
	Omega       *float64
	AUC         *float64
	DeltaR2     *float64
	RegressionP *float64
	NonInfPass  *bool
	NonInfGap   *float64
	CVHeldOutR  *float64
}

// GraderResult is the response's verdict block: a label plus itemized
// reasons and warnings, never a bare adjective.
type GraderResult struct {
	Verdict  Verdict  `json:"verdict"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}

// Grade applies the rule table. Rules are evaluated strongest first so the
// label is the best claim the evidence supports.
func Grade(in GraderInput) GraderResult {
	out := GraderResult{Reasons: []string{}, Warnings: []string{}}

	if in.N < GraderSmallSampleN {
		out.Warnings = append(out.Warnings, fmt.Sprintf("sample size %d below %d", in.N, GraderSmallSampleN))
	}
	if in.SplitHalf != nil && *in.SplitHalf < GraderMinReliability {
		out.Warnings = append(out.Warnings, fmt.Sprintf("IHS split-half reliability %.2f below %.2f", *in.SplitHalf, GraderMinReliability))
	}
	if in.Omega != nil && *in.Omega < GraderMinReliability {
		out.Warnings = append(out.Warnings, fmt.Sprintf("benchmark omega %.2f below %.2f", *in.Omega, GraderMinReliability))
	}

	if in.R == nil || in.N < GraderMinN {
		out.Verdict = VerdictInconclusive
		out.Reasons = append(out.Reasons, fmt.Sprintf("insufficient data for a verdict (n=%d)", in.N))
		return out
	}
	r := *in.R

	superior := in.NonInfPass != nil && *in.NonInfPass &&
		in.NonInfGap != nil && *in.NonInfGap <= -GraderSuperiorityEdge
	incremental := in.DeltaR2 != nil && *in.DeltaR2 >= GraderDeltaR2Floor &&
		in.RegressionP != nil && *in.RegressionP < GraderSignificanceP
	discriminates := in.AUC != nil && *in.AUC >= GraderStrongAUC
	discriminatesOK := in.AUC != nil && *in.AUC >= GraderAcceptableAUC
	nonInferior := in.NonInfPass != nil && *in.NonInfPass

	switch {
	case superior && incremental && discriminates && r >= GraderStrongR:
		out.Verdict = VerdictClearlyBetter
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("IHS beats the best questionnaire by at least %.2f on the leave-one-out benchmark", GraderSuperiorityEdge),
			fmt.Sprintf("significant incremental ΔR²=%.3f (p=%.3f)", *in.DeltaR2, *in.RegressionP),
			fmt.Sprintf("AUC %.2f at or above %.2f", *in.AUC, GraderStrongAUC))
	case nonInferior && r >= GraderStrongR && discriminatesOK:
		out.Verdict = VerdictAtLeastAsGood
		out.Reasons = append(out.Reasons,
			"non-inferior to the best questionnaire within the equivalence margin",
			fmt.Sprintf("convergent r=%.2f at or above %.2f", r, GraderStrongR),
			fmt.Sprintf("AUC %.2f at or above %.2f", *in.AUC, GraderAcceptableAUC))
	case r >= GraderPromisingR && (in.N < GraderSmallSampleN || belowReliabilityFloor(in)):
		out.Verdict = VerdictPromising
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("convergent r=%.2f shows signal", r),
			"sample size or reliability not yet sufficient for a stronger claim")
	case r < GraderWeakR || (in.NonInfPass != nil && !*in.NonInfPass):
		out.Verdict = VerdictNotCompetitive
		if r < GraderWeakR {
			out.Reasons = append(out.Reasons, fmt.Sprintf("convergent r=%.2f below %.2f", r, GraderWeakR))
		}
		if in.NonInfPass != nil && !*in.NonInfPass {
			out.Reasons = append(out.Reasons, "fails non-inferiority against the best questionnaire")
		}
	default:
		out.Verdict = VerdictInconclusive
		out.Reasons = append(out.Reasons, "evidence is mixed; no rule fired decisively")
	}

	return out
}

func belowReliabilityFloor(in GraderInput) bool {
	if in.SplitHalf != nil && *in.SplitHalf < GraderMinReliability {
		return true
	}
	return in.Omega != nil && *in.Omega < GraderMinReliability
}
