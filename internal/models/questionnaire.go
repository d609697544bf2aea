package models

import (
	"time"

	"github.com/lib/pq"
)

// QuestionnaireEntry is one respondent's self-report record. Entries are
// immutable once recorded; the engine only ever reads them.
type QuestionnaireEntry struct {
	ID            int           `gorm:"primaryKey"`
	SessionID     string        `gorm:"index;not null"`
	ParticipantID string        `gorm:"index"`
	Who5Items     pq.Int64Array `gorm:"type:integer[]"` // 5 items, 0-5 each
	SwlsItems     pq.Int64Array `gorm:"type:integer[]"` // 5 items, 1-7 each
	Cantril       *int          // 0-10, nullable
	CreatedAt     time.Time

	// Demographics come from the left join on participant_id; they are not
	// columns of this table.
	Sex     string `gorm:"-:migration"`
	Age     *int   `gorm:"-:migration"`
	Country string `gorm:"-:migration"`
}

// Who5Total sums the five WHO-5 items. Returns nil when the item vector is
// incomplete, so a partial record never masquerades as a low score.
func (q *QuestionnaireEntry) Who5Total() *float64 {
	return sumItems(q.Who5Items, 5)
}

// SwlsTotal sums the five SWLS items.
func (q *QuestionnaireEntry) SwlsTotal() *float64 {
	return sumItems(q.SwlsItems, 5)
}

// CantrilValue returns the ladder score as a float, or nil.
func (q *QuestionnaireEntry) CantrilValue() *float64 {
	if q.Cantril == nil {
		return nil
	}
	v := float64(*q.Cantril)
	return &v
}

func sumItems(items pq.Int64Array, want int) *float64 {
	if len(items) != want {
		return nil
	}
	var total float64
	for _, v := range items {
		total += float64(v)
	}
	return &total
}
