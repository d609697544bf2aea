package validity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

func TestJoinInnerJoin(t *testing.T) {
	entries := []models.QuestionnaireEntry{
		makeEntry("s1", 10, 10, 4),
		makeEntry("s2", 15, 14, 6),
	}
	sessions := []models.ScanSession{
		makeSession(t, "s2", 50, nil),
		makeSession(t, "s3", 70, nil),
	}
	recs, err := Join(entries, sessions, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s2", recs[0].SessionID)
	assert.Equal(t, 50.0, recs[0].IHS)
	require.NotNil(t, recs[0].Who5)
	assert.Equal(t, 15.0, *recs[0].Who5)
}

func TestJoinNoEntriesSentinel(t *testing.T) {
	_, err := Join(nil, []models.ScanSession{makeSession(t, "s1", 10, nil)}, Options{}, nil)
	assert.True(t, errors.Is(err, ErrNoEntries))
}

func TestJoinNoOverlapIsEmptyNotError(t *testing.T) {
	entries := []models.QuestionnaireEntry{makeEntry("a", 10, 10, 4)}
	sessions := []models.ScanSession{makeSession(t, "b", 10, nil)}
	recs, err := Join(entries, sessions, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestJoinDeviceFilter(t *testing.T) {
	entries := []models.QuestionnaireEntry{
		makeEntry("phone", 10, 10, 4),
		makeEntry("laptop", 15, 14, 6),
	}
	phone := makeSession(t, "phone", 40, nil)
	phone.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	laptop := makeSession(t, "laptop", 60, nil)
	sessions := []models.ScanSession{phone, laptop}

	recs, err := Join(entries, sessions, Options{Device: "mobile"}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "phone", recs[0].SessionID)
	assert.Equal(t, "mobile", recs[0].Device)

	recs, err = Join(entries, sessions, Options{Device: "desktop"}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "laptop", recs[0].SessionID)
}

func TestJoinTimeoutFilters(t *testing.T) {
	trials := makeTrials(models.TrialsPerScan, true, 800, "")
	trials[3].Response = nil // one timeout
	entries := []models.QuestionnaireEntry{makeEntry("s1", 10, 10, 4)}
	sessions := []models.ScanSession{makeSession(t, "s1", 40, trials)}

	recs, err := Join(entries, sessions, Options{ExcludeTimeouts: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = Join(entries, sessions, Options{TimeoutsMax: Int(1)}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = Join(entries, sessions, Options{TimeoutsMax: Int(0)}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = Join(entries, sessions, Options{TimeoutsFracMax: Float(0.01)}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestJoinIATGate(t *testing.T) {
	entries := []models.QuestionnaireEntry{makeEntry("s1", 10, 10, 4)}

	clean := makeSession(t, "s1", 40, makeTrials(models.TrialsPerScan, true, 800, ""))
	recs, err := Join(entries, []models.ScanSession{clean}, Options{IAT: true}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// 4 of 24 trials outside the window exceeds the 10% allowance.
	rushed := makeTrials(models.TrialsPerScan, true, 800, "")
	for i := 0; i < 4; i++ {
		rushed[i].ResponseTimeMs = 100
	}
	recs, err = Join(entries, []models.ScanSession{makeSession(t, "s1", 40, rushed)}, Options{IAT: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Incomplete deck never passes the gate.
	short := makeSession(t, "s1", 40, makeTrials(20, true, 800, ""))
	recs, err = Join(entries, []models.ScanSession{short}, Options{IAT: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestJoinModalityRules(t *testing.T) {
	entries := []models.QuestionnaireEntry{makeEntry("s1", 10, 10, 4)}
	mixed := makeTrials(models.TrialsPerScan, true, 800, "touch")
	mixed[0].InputModality = "keyboard" // 23/24 touch

	sessions := []models.ScanSession{makeSession(t, "s1", 40, mixed)}

	// Majority rule.
	recs, err := Join(entries, sessions, Options{Modality: "touch"}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	recs, err = Join(entries, sessions, Options{Modality: "keyboard"}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Exclusive demands purity.
	recs, err = Join(entries, sessions, Options{Modality: "touch", Exclusive: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	pure := []models.ScanSession{makeSession(t, "s1", 40, makeTrials(models.TrialsPerScan, true, 800, "touch"))}
	recs, err = Join(entries, pure, Options{Modality: "touch", Exclusive: true}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// Threshold is a purity percentage: 23/24 ≈ 95.8%.
	recs, err = Join(entries, sessions, Options{Modality: "touch", Threshold: 90}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	recs, err = Join(entries, sessions, Options{Modality: "touch", Threshold: 99}, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Any-of set.
	recs, err = Join(entries, sessions, Options{Modalities: []string{"touch", "mouse"}}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestJoinDemographicFilters(t *testing.T) {
	withDemo := makeEntry("s1", 10, 10, 4)
	withDemo.Sex = "Female"
	withDemo.Age = Int(34)
	withDemo.Country = "NL"
	noAge := makeEntry("s2", 15, 14, 6)
	noAge.Sex = "male"
	noAge.Country = "DE"

	entries := []models.QuestionnaireEntry{withDemo, noAge}
	sessions := []models.ScanSession{
		makeSession(t, "s1", 40, nil),
		makeSession(t, "s2", 60, nil),
	}

	recs, err := Join(entries, sessions, Options{Sex: "female"}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].SessionID)

	// Age bounds require a known age.
	recs, err = Join(entries, sessions, Options{AgeMin: Int(30)}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].SessionID)

	recs, err = Join(entries, sessions, Options{Countries: []string{"nl", "be"}}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].SessionID)

	recs, err = Join(entries, sessions, Options{ExcludeCountries: []string{"NL"}}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s2", recs[0].SessionID)
}

func TestJoinSensitivityAllMax(t *testing.T) {
	maxed := makeEntry("s1", 25, 35, 10)
	normal := makeEntry("s2", 15, 20, 6)
	entries := []models.QuestionnaireEntry{maxed, normal}
	sessions := []models.ScanSession{
		makeSession(t, "s1", 80, nil),
		makeSession(t, "s2", 50, nil),
	}

	recs, err := Join(entries, sessions, Options{}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = Join(entries, sessions, Options{SensitivityAllMax: true}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s2", recs[0].SessionID)
}

func TestJoinTrimBand(t *testing.T) {
	var entries []models.QuestionnaireEntry
	var sessions []models.ScanSession
	pretrim := make([]float64, 0, 20)
	for i := 1; i <= 20; i++ {
		id := "s" + string(rune('a'+i-1))
		entries = append(entries, makeEntry(id, 15, 14, 6))
		sessions = append(sessions, makeSession(t, id, float64(i), nil))
		pretrim = append(pretrim, float64(i))
	}

	frac := 0.10
	recs, err := Join(entries, sessions, Options{TrimIHS: &frac}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Less(t, len(recs), 20)

	lo, ok := stats.Quantile(pretrim, frac)
	require.True(t, ok)
	hi, ok := stats.Quantile(pretrim, 1-frac)
	require.True(t, ok)
	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.IHS, lo)
		assert.LessOrEqual(t, rec.IHS, hi)
	}
}
