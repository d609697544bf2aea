package repository

import (
	"context"
	"fmt"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/database"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
)

// GetScanSessions fetches up to limit scan sessions, newest first.
func GetScanSessions(ctx context.Context, limit int) ([]models.ScanSession, error) {
	var sessions []models.ScanSession
	err := database.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scan sessions: %w", err)
	}
	return sessions, nil
}

// GetScanSessionsBySessions restricts the fetch to a session-id set.
func GetScanSessionsBySessions(ctx context.Context, sessionIDs []string) ([]models.ScanSession, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var sessions []models.ScanSession
	err := database.DB.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scan sessions by session id: %w", err)
	}
	return sessions, nil
}
