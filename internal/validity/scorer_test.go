package validity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// cvRecords builds a supervised population where N1 carries the benchmark
// signal, N2 carries a weaker echo and N3 is noise.
func cvRecords(n int, seed int64) []JoinedRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]JoinedRecord, n)
	for i := range records {
		latent := rng.NormFloat64()
		rec := scaleRecord("s",
			15+5*latent+0.5*rng.NormFloat64(),
			20+6*latent+0.5*rng.NormFloat64(),
			6+2*latent+0.3*rng.NormFloat64())
		rec.IHS = 50 + 10*latent
		rec.N1 = latent
		rec.N2 = 0.5*latent + 0.5*rng.NormFloat64()
		rec.N3 = rng.NormFloat64()
		rec.Trials = makeTrials(models.TrialsPerScan, true, 400+200*rng.Float64(), "")
		records[i] = rec
	}
	return records
}

func TestScoreRawAndN1(t *testing.T) {
	records := cvRecords(10, 1)
	ctx := NewContext(records, stats.MethodPearson)

	opts := Options{Score: ScoreRaw}
	score, info := Score(ctx, opts, rand.New(rand.NewSource(1)))
	assert.Nil(t, info)
	for i := range records {
		assert.Equal(t, records[i].IHS, score[i])
	}

	opts.Score = ScoreN1
	score, info = Score(ctx, opts, rand.New(rand.NewSource(1)))
	assert.Nil(t, info)
	for i := range records {
		assert.Equal(t, records[i].N1, score[i])
	}
}

func TestTunedBlendFollowsComponents(t *testing.T) {
	records := make([]JoinedRecord, 10)
	for i := range records {
		records[i] = JoinedRecord{N1: float64(i), N2: 3, N3: 3}
	}
	ctx := NewContext(records, stats.MethodPearson)
	score, info := Score(ctx, Options{Score: ScoreTuned}, rand.New(rand.NewSource(1)))
	assert.Nil(t, info)
	// Constant components drop out; the blend must be strictly increasing
	// with N1.
	for i := 1; i < len(score); i++ {
		assert.Greater(t, score[i], score[i-1])
	}
}

func TestCVScoreReproducibleWithSeed(t *testing.T) {
	records := cvRecords(60, 7)
	ctx := NewContext(records, stats.MethodPearson)
	opts := Options{Score: ScoreCV, Lambda: 1.0, Seed: 42}
	opts.Normalize()

	score1, info1 := Score(ctx, opts, rand.New(rand.NewSource(opts.Seed)))
	score2, info2 := Score(ctx, opts, rand.New(rand.NewSource(opts.Seed)))

	require.NotNil(t, info1)
	require.NotNil(t, info2)
	assert.Equal(t, info1.Folds, info2.Folds)
	assert.Equal(t, score1, score2)
	require.NotNil(t, info1.HeldOutR)
	require.NotNil(t, info2.HeldOutR)
	assert.Equal(t, *info1.HeldOutR, *info2.HeldOutR)
}

func TestCVScoreRecoversLinearSignal(t *testing.T) {
	records := cvRecords(80, 19)
	ctx := NewContext(records, stats.MethodPearson)
	opts := Options{Score: ScoreCV, Lambda: 1.0}
	opts.Normalize()

	score, info := Score(ctx, opts, rand.New(rand.NewSource(3)))
	require.NotNil(t, info)
	assert.Equal(t, ScoreCV, info.Mode)
	assert.Equal(t, 80, info.N)
	assert.GreaterOrEqual(t, info.Folds, cvMinFolds)
	assert.LessOrEqual(t, info.Folds, cvMaxFolds)
	require.NotNil(t, info.HeldOutR)
	assert.Greater(t, *info.HeldOutR, 0.8)
	assert.Len(t, score, 80)
	assert.Contains(t, info.MeanWeights, "n1")
	assert.Contains(t, info.MeanWeights, "intercept")
}

func TestCVScoreTooFewRowsFallsBackToRaw(t *testing.T) {
	records := cvRecords(10, 2)
	ctx := NewContext(records, stats.MethodPearson)
	opts := Options{Score: ScoreCV}
	opts.Normalize()

	score, info := Score(ctx, opts, rand.New(rand.NewSource(1)))
	require.NotNil(t, info)
	assert.Nil(t, info.HeldOutR)
	assert.Equal(t, 10, info.N)
	for i := range records {
		assert.Equal(t, records[i].IHS, score[i])
	}
}

func TestCVScoreSkippedFoldsKeepRawIHS(t *testing.T) {
	// Constant features make every training fit degenerate, so every fold
	// is skipped. The substituted scores must stay at raw IHS and the
	// held-out correlation must be null, never a vector of zeros.
	records := cvRecords(40, 13)
	for i := range records {
		records[i].N1 = 1
		records[i].N2 = 1
		records[i].N3 = 1
	}
	ctx := NewContext(records, stats.MethodPearson)
	opts := Options{Score: ScoreCV}
	opts.Normalize()

	score, info := Score(ctx, opts, rand.New(rand.NewSource(1)))
	require.NotNil(t, info)
	assert.Nil(t, info.HeldOutR)
	for i := range records {
		assert.Equal(t, records[i].IHS, score[i])
	}
}

func TestCVDomainAndCardModes(t *testing.T) {
	records := cvRecords(60, 23)
	// Two domains so the domain features have something to separate.
	for i := range records {
		for j := range records[i].Trials {
			if j%2 == 0 {
				records[i].Trials[j].Domain = "self"
			} else {
				records[i].Trials[j].Domain = "social"
			}
		}
	}
	ctx := NewContext(records, stats.MethodPearson)

	for _, mode := range []ScoreMode{ScoreCVDomain, ScoreCVCard} {
		opts := Options{Score: mode}
		opts.Normalize()
		score, info := Score(ctx, opts, rand.New(rand.NewSource(5)))
		require.NotNil(t, info, "mode %s", mode)
		assert.Equal(t, mode, info.Mode)
		assert.Len(t, score, 60)
	}
}

func TestCVGammaGridReported(t *testing.T) {
	records := cvRecords(60, 31)
	ctx := NewContext(records, stats.MethodPearson)
	opts := Options{Score: ScoreCV, RTLearn: true}
	opts.Normalize()

	_, info := Score(ctx, opts, rand.New(rand.NewSource(9)))
	require.NotNil(t, info)
	require.NotNil(t, info.MeanGamma)
	assert.GreaterOrEqual(t, *info.MeanGamma, rtGammaGrid[0])
	assert.LessOrEqual(t, *info.MeanGamma, rtGammaGrid[len(rtGammaGrid)-1])
}

func TestCardFeatureCap(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	records := make([]JoinedRecord, 40)
	for i := range records {
		trials := make([]models.Trial, 30)
		for j := range trials {
			yes := rng.Intn(2) == 0
			trials[j] = models.Trial{CardID: j + 1, Response: &yes, ResponseTimeMs: 600}
		}
		records[i] = JoinedRecord{Trials: trials}
	}
	ctx := NewContext(records, stats.MethodPearson)
	names, rows := cardFeatures(ctx, defaultDecayGamma)
	assert.LessOrEqual(t, len(names), cardFeatureCap)
	require.Len(t, rows, 40)
	assert.Len(t, rows[0], len(names))
}
