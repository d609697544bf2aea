package models

import "time"

// Demographic is the lookup record keyed by the externally supplied
// participant identifier.
type Demographic struct {
	ID            int    `gorm:"primaryKey"`
	ParticipantID string `gorm:"uniqueIndex;not null"`
	Sex           string
	Age           *int
	Country       string
	CreatedAt     time.Time
}
