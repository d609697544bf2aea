// Package validity implements the IHS validity analytics engine: it joins
// questionnaire entries with scan sessions and runs the psychometric battery
// (correlation, reliability, discrimination, incremental validity,
// non-inferiority, cross-validated scoring) against the benchmark composite.
package validity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// Scale identifiers used throughout the engine.
const (
	ScaleWho5    = "who5"
	ScaleSwls    = "swls"
	ScaleCantril = "cantril"
)

// ScaleIDs lists the benchmark components in a fixed order.
var ScaleIDs = []string{ScaleWho5, ScaleSwls, ScaleCantril}

// JoinedRecord is one session present in both stores. Built fresh per
// request, filtered in place, discarded with the response.
type JoinedRecord struct {
	SessionID string
	IHS       float64
	N1        float64
	N2        float64
	N3        float64
	N1Scaled  *float64
	Trials    []models.Trial
	Who5      *float64
	Swls      *float64
	Cantril   *float64
	AllMax    bool
	Device    string
	Sex       string
	Age       *int
	Country   string
}

// ScaleTotal returns the named questionnaire total, nil when absent.
func (r *JoinedRecord) ScaleTotal(scale string) *float64 {
	switch scale {
	case ScaleWho5:
		return r.Who5
	case ScaleSwls:
		return r.Swls
	case ScaleCantril:
		return r.Cantril
	}
	return nil
}

// ScoreMode selects how the per-session predictor is produced.
type ScoreMode string

const (
	ScoreRaw      ScoreMode = "raw"
	ScoreTuned    ScoreMode = "tuned"
	ScoreN1       ScoreMode = "n1"
	ScoreN12      ScoreMode = "n12"
	ScoreCV       ScoreMode = "cv"
	ScoreCVDomain ScoreMode = "cv_domain"
	ScoreCVCard   ScoreMode = "cv_card"
)

// Options is the full filter and scoring configuration for one request.
// The zero value plus Normalize gives the documented defaults.
type Options struct {
	Limit  int
	Method stats.Method

	Device     string   // mobile, desktop or any
	Modality   string   // single modality; takes precedence over Modalities
	Modalities []string // any-of set
	Exclusive  bool     // session must be pure in the matched modality
	Threshold  float64  // minimum modality-purity fraction, 0-100

	ExcludeTimeouts   bool
	TimeoutsMax       *int
	TimeoutsFracMax   *float64
	IAT               bool
	SensitivityAllMax bool

	TrimIHS    *float64
	TrimScales *float64

	Sex              string
	Country          string
	Countries        []string
	ExcludeCountries []string
	AgeMin           *int
	AgeMax           *int

	Score     ScoreMode
	RTDenoise bool
	RTLearn   bool
	Lambda    float64

	BootstrapReplicates int
	Seed                int64

	IncludePerSession bool
}

// Normalize fills defaults and resolves documented precedence rules:
// a single modality beats the modalities set, trim booleans become the
// default 10% fraction upstream of this struct.
func (o *Options) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 500
	}
	if o.Limit > 2000 {
		o.Limit = 2000
	}
	if o.Method != stats.MethodSpearman {
		o.Method = stats.MethodPearson
	}
	if o.Device == "" {
		o.Device = "any"
	}
	if o.Modality != "" {
		o.Modalities = nil
	}
	if o.Score == "" {
		o.Score = ScoreRaw
	}
	if o.Lambda <= 0 {
		o.Lambda = 1.0
	}
	if o.BootstrapReplicates <= 0 {
		o.BootstrapReplicates = 200
	}
}

// CacheKey canonicalizes the full parameter set. Two requests with the same
// key are interchangeable for the short-TTL result cache.
func (o *Options) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "limit=%d|method=%s|device=%s|modality=%s", o.Limit, o.Method, o.Device, o.Modality)
	mods := append([]string(nil), o.Modalities...)
	sort.Strings(mods)
	fmt.Fprintf(&b, "|modalities=%s|exclusive=%t|threshold=%g", strings.Join(mods, ","), o.Exclusive, o.Threshold)
	fmt.Fprintf(&b, "|exTimeouts=%t|toMax=%s|toFrac=%s|iat=%t|allmax=%t",
		o.ExcludeTimeouts, fmtIntPtr(o.TimeoutsMax), fmtFloatPtr(o.TimeoutsFracMax), o.IAT, o.SensitivityAllMax)
	fmt.Fprintf(&b, "|trimIhs=%s|trimScales=%s", fmtFloatPtr(o.TrimIHS), fmtFloatPtr(o.TrimScales))
	countries := append([]string(nil), o.Countries...)
	sort.Strings(countries)
	excluded := append([]string(nil), o.ExcludeCountries...)
	sort.Strings(excluded)
	fmt.Fprintf(&b, "|sex=%s|country=%s|countries=%s|exCountries=%s|ageMin=%s|ageMax=%s",
		o.Sex, o.Country, strings.Join(countries, ","), strings.Join(excluded, ","),
		fmtIntPtr(o.AgeMin), fmtIntPtr(o.AgeMax))
	fmt.Fprintf(&b, "|score=%s|rtDenoise=%t|rtLearn=%t|lambda=%g|seed=%d|perSession=%t",
		o.Score, o.RTDenoise, o.RTLearn, o.Lambda, o.Seed, o.IncludePerSession)
	return b.String()
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

// Float boxes a value for the nullable response fields.
func Float(v float64) *float64 { return &v }

// Int boxes an int.
func Int(v int) *int { return &v }
