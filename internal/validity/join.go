package validity

import (
	"errors"
	"strings"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// ErrNoEntries is the explicit empty-store sentinel: with zero questionnaire
// entries there is nothing to validate against, and proceeding would only
// manufacture divisions by zero downstream.
var ErrNoEntries = errors.New("no questionnaire entries available")

// IAT quality gate bounds (§ implicit-association-test style response window).
const (
	iatWindowMinMs   = 300.0
	iatWindowMaxMs   = 2000.0
	iatOutsideFrac   = 0.10
	defaultTrimFrac  = 0.10
	splitHalfMinTrls = 10
)

// Join inner-joins the two stores by session id, classifies devices from the
// user agent and applies the configured predicates in sequence. Percentile
// trims compute their quantiles on the post-device/modality-filtered
// population before removing rows. Pure function of its inputs.
func Join(entries []models.QuestionnaireEntry, sessions []models.ScanSession, opts Options, catalog *models.ScaleCatalog) ([]JoinedRecord, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	if catalog == nil {
		catalog = models.DefaultScaleCatalog()
	}
	bySession := make(map[string]*models.QuestionnaireEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		if _, dup := bySession[e.SessionID]; !dup {
			bySession[e.SessionID] = e
		}
	}

	joined := make([]JoinedRecord, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		e, ok := bySession[s.SessionID]
		if !ok {
			continue
		}
		trials, err := s.Trials()
		if err != nil {
			// A malformed payload disqualifies the session, not the request.
			continue
		}
		rec := JoinedRecord{
			SessionID: s.SessionID,
			IHS:       s.IHSScore,
			N1:        s.N1,
			N2:        s.N2,
			N3:        s.N3,
			N1Scaled:  s.N1Scaled,
			Trials:    trials,
			Who5:      e.Who5Total(),
			Swls:      e.SwlsTotal(),
			Cantril:   e.CantrilValue(),
			Device:    classifyDevice(s.UserAgent),
			Sex:       e.Sex,
			Age:       e.Age,
			Country:   e.Country,
		}
		rec.AllMax = allScalesMaxed(&rec, catalog)
		joined = append(joined, rec)
	}

	filtered := joined[:0:0]
	for _, rec := range joined {
		if passesRowFilters(&rec, &opts) {
			filtered = append(filtered, rec)
		}
	}

	// Trims run last, on the already row-filtered population.
	if opts.TrimIHS != nil {
		filtered = trimByValue(filtered, *opts.TrimIHS, func(r *JoinedRecord) (float64, bool) {
			return r.IHS, true
		})
	}
	if opts.TrimScales != nil {
		for _, scale := range ScaleIDs {
			scale := scale
			filtered = trimByValue(filtered, *opts.TrimScales, func(r *JoinedRecord) (float64, bool) {
				if v := r.ScaleTotal(scale); v != nil {
					return *v, true
				}
				return 0, false
			})
		}
	}

	return filtered, nil
}

func passesRowFilters(rec *JoinedRecord, opts *Options) bool {
	if opts.Device != "" && opts.Device != "any" && rec.Device != opts.Device {
		return false
	}
	if !passesModality(rec, opts) {
		return false
	}
	if !passesTimeouts(rec, opts) {
		return false
	}
	if opts.IAT && !passesIAT(rec) {
		return false
	}
	if opts.SensitivityAllMax && rec.AllMax {
		return false
	}
	return passesDemographics(rec, opts)
}

// passesModality checks the session's trial-level input modality against the
// configured modality (single, takes precedence) or modalities set (any-of).
// exclusive demands a pure session; threshold sets the minimum purity
// fraction, defaulting to a simple majority.
func passesModality(rec *JoinedRecord, opts *Options) bool {
	wanted := map[string]bool{}
	if opts.Modality != "" {
		wanted[opts.Modality] = true
	} else {
		for _, m := range opts.Modalities {
			wanted[m] = true
		}
	}
	if len(wanted) == 0 {
		return true
	}

	var total, matched int
	for _, t := range rec.Trials {
		if t.InputModality == "" {
			continue
		}
		total++
		if wanted[t.InputModality] {
			matched++
		}
	}
	if total == 0 {
		return false
	}

	purity := float64(matched) / float64(total)
	switch {
	case opts.Exclusive:
		return matched == total
	case opts.Threshold > 0:
		return purity*100 >= opts.Threshold
	default:
		return purity >= 0.5
	}
}

func passesTimeouts(rec *JoinedRecord, opts *Options) bool {
	var timeouts int
	for _, t := range rec.Trials {
		if t.Response == nil {
			timeouts++
		}
	}
	if opts.ExcludeTimeouts && timeouts > 0 {
		return false
	}
	if opts.TimeoutsMax != nil && timeouts > *opts.TimeoutsMax {
		return false
	}
	if opts.TimeoutsFracMax != nil && len(rec.Trials) > 0 {
		if float64(timeouts)/float64(len(rec.Trials)) > *opts.TimeoutsFracMax {
			return false
		}
	}
	return true
}

// passesIAT applies the IAT-style quality gate: a complete deck and at most
// 10% of trials outside the 300-2000ms response window.
func passesIAT(rec *JoinedRecord) bool {
	if len(rec.Trials) != models.TrialsPerScan {
		return false
	}
	var outside int
	for _, t := range rec.Trials {
		if t.ResponseTimeMs < iatWindowMinMs || t.ResponseTimeMs > iatWindowMaxMs {
			outside++
		}
	}
	return float64(outside)/float64(len(rec.Trials)) <= iatOutsideFrac
}

func passesDemographics(rec *JoinedRecord, opts *Options) bool {
	if opts.Sex != "" && !strings.EqualFold(rec.Sex, opts.Sex) {
		return false
	}
	if opts.Country != "" && !strings.EqualFold(rec.Country, opts.Country) {
		return false
	}
	if len(opts.Countries) > 0 && !containsFold(opts.Countries, rec.Country) {
		return false
	}
	if len(opts.ExcludeCountries) > 0 && containsFold(opts.ExcludeCountries, rec.Country) {
		return false
	}
	if opts.AgeMin != nil && (rec.Age == nil || *rec.Age < *opts.AgeMin) {
		return false
	}
	if opts.AgeMax != nil && (rec.Age == nil || *rec.Age > *opts.AgeMax) {
		return false
	}
	return true
}

// trimByValue drops records outside the [f, 1-f] quantile band of the given
// value. Quantiles are computed over the records that carry the value;
// records without it are untouched.
func trimByValue(recs []JoinedRecord, frac float64, value func(*JoinedRecord) (float64, bool)) []JoinedRecord {
	if frac <= 0 || frac >= 0.5 {
		frac = defaultTrimFrac
	}
	values := make([]float64, 0, len(recs))
	for i := range recs {
		if v, ok := value(&recs[i]); ok {
			values = append(values, v)
		}
	}
	lo, okLo := stats.Quantile(values, frac)
	hi, okHi := stats.Quantile(values, 1-frac)
	if !okLo || !okHi {
		return recs
	}

	kept := recs[:0:0]
	for i := range recs {
		v, ok := value(&recs[i])
		if ok && (v < lo || v > hi) {
			continue
		}
		kept = append(kept, recs[i])
	}
	return kept
}

func allScalesMaxed(rec *JoinedRecord, catalog *models.ScaleCatalog) bool {
	var present int
	for _, id := range ScaleIDs {
		v := rec.ScaleTotal(id)
		if v == nil {
			continue
		}
		present++
		scale, ok := catalog.ByID(id)
		if !ok || *v < scale.MaxTotal() {
			return false
		}
	}
	return present > 0
}

func classifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, marker := range []string{"mobi", "android", "iphone", "ipad", "ipod"} {
		if strings.Contains(ua, marker) {
			return "mobile"
		}
	}
	return "desktop"
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
