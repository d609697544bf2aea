package validity

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
)

// itemSplit spreads a total over n items, front-loading the remainder.
func itemSplit(total, n int) pq.Int64Array {
	items := make(pq.Int64Array, n)
	base := total / n
	rem := total % n
	for i := range items {
		items[i] = int64(base)
		if i < rem {
			items[i]++
		}
	}
	return items
}

func makeEntry(session string, who5, swls, cantril int) models.QuestionnaireEntry {
	c := cantril
	return models.QuestionnaireEntry{
		SessionID: session,
		Who5Items: itemSplit(who5, 5),
		SwlsItems: itemSplit(swls, 5),
		Cantril:   &c,
	}
}

func makeTrials(n int, yes bool, rtMs float64, modality string) []models.Trial {
	trials := make([]models.Trial, n)
	for i := range trials {
		response := yes
		trials[i] = models.Trial{
			CardID:         i + 1,
			Domain:         "basics",
			Response:       &response,
			ResponseTimeMs: rtMs,
			InputModality:  modality,
		}
	}
	return trials
}

func makeSession(t *testing.T, session string, ihs float64, trials []models.Trial) models.ScanSession {
	t.Helper()
	s := models.ScanSession{
		SessionID: session,
		IHSScore:  ihs,
		N1:        ihs,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	}
	if trials != nil {
		raw, err := json.Marshal(trials)
		if err != nil {
			t.Fatalf("marshal trials: %v", err)
		}
		s.AllResponses = string(raw)
	}
	return s
}

// scaleRecord builds a pre-joined record with all three questionnaire totals.
func scaleRecord(id string, who5, swls, cantril float64) JoinedRecord {
	return JoinedRecord{
		SessionID: id,
		Who5:      Float(who5),
		Swls:      Float(swls),
		Cantril:   Float(cantril),
	}
}
