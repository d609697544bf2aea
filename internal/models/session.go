package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TrialsPerScan is the number of cards a complete scan presents.
const TrialsPerScan = 24

// Trial is one card presentation inside a scan. Response is nil on timeout.
type Trial struct {
	CardID         int     `json:"cardId"`
	Domain         string  `json:"domain"`
	Response       *bool   `json:"response"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
	InputModality  string  `json:"inputModality,omitempty"`
}

// ScanSession is one behavioral-scan result as produced by the upstream
// scoring rule. IHS and the N components are opaque inputs here.
type ScanSession struct {
	ID               int    `gorm:"primaryKey"`
	SessionID        string `gorm:"uniqueIndex;not null"`
	IHSScore         float64
	N1               float64
	N2               float64
	N3               float64
	N1Scaled         *float64
	AllResponses     string `gorm:"type:jsonb"`
	UserAgent        string
	CompletionTimeMs float64
	CreatedAt        time.Time
}

// Trials decodes the raw response payload. An empty payload yields an empty
// slice rather than an error so incomplete sessions can still be filtered out.
func (s *ScanSession) Trials() ([]Trial, error) {
	if s.AllResponses == "" {
		return nil, nil
	}
	var trials []Trial
	if err := json.Unmarshal([]byte(s.AllResponses), &trials); err != nil {
		return nil, fmt.Errorf("failed to decode trials for session %s: %w", s.SessionID, err)
	}
	return trials, nil
}

// Complete reports whether the session carries the full card deck.
func (s *ScanSession) Complete() bool {
	trials, err := s.Trials()
	return err == nil && len(trials) == TrialsPerScan
}
