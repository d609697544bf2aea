package repository

import (
	"context"
	"fmt"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/database"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
)

// GetQuestionnaireEntries fetches up to limit entries with their demographic
// attributes left-joined by participant id. Oldest entries drop off first
// since the engine cares about the most recent population.
func GetQuestionnaireEntries(ctx context.Context, limit int) ([]models.QuestionnaireEntry, error) {
	var entries []models.QuestionnaireEntry
	query := `
		SELECT
			e.id, e.session_id, e.participant_id, e.who5_items, e.swls_items,
			e.cantril, e.created_at,
			COALESCE(d.sex, '') AS sex, d.age, COALESCE(d.country, '') AS country
		FROM questionnaire_entries e
		LEFT JOIN demographics d ON e.participant_id = d.participant_id
		ORDER BY e.created_at DESC
		LIMIT ?;
	`
	if err := database.DB.WithContext(ctx).Raw(query, limit).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load questionnaire entries: %w", err)
	}
	return entries, nil
}

// GetQuestionnaireEntriesBySessions restricts the fetch to a session-id set.
func GetQuestionnaireEntriesBySessions(ctx context.Context, sessionIDs []string) ([]models.QuestionnaireEntry, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var entries []models.QuestionnaireEntry
	query := `
		SELECT
			e.id, e.session_id, e.participant_id, e.who5_items, e.swls_items,
			e.cantril, e.created_at,
			COALESCE(d.sex, '') AS sex, d.age, COALESCE(d.country, '') AS country
		FROM questionnaire_entries e
		LEFT JOIN demographics d ON e.participant_id = d.participant_id
		WHERE e.session_id IN ?;
	`
	if err := database.DB.WithContext(ctx).Raw(query, sessionIDs).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load questionnaire entries by session: %w", err)
	}
	return entries, nil
}
