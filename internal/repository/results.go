package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"aura/internal/database"
	"aura/internal/models"
	"aura/internal/telemetry"
)

// GetOrCreateSession looks a session up by ID, creating it on first contact.
func GetOrCreateSession(ctx context.Context, sessionID, participantID string) (*models.Session, error) {
	session := &models.Session{
		ID:            sessionID,
		ParticipantID: participantID,
		StartedAt:     time.Now().UTC(),
	}
	err := database.DB.WithContext(ctx).
		Where(models.Session{ID: sessionID}).
		FirstOrCreate(session).Error
	return session, err
}

// UpsertRoundSummary inserts or replaces the aggregate for one round.
// Summarization is idempotent: recomputing a round overwrites its row.
func UpsertRoundSummary(ctx context.Context, s models.RoundSummary) error {
	return database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "round"}},
			UpdateAll: true,
		}).
		Create(&s).Error
}

// GetRoundSummaries returns a session's round summaries in round order.
func GetRoundSummaries(ctx context.Context, sessionID string) ([]models.RoundSummary, error) {
	var rounds []models.RoundSummary
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round").
		Find(&rounds).Error
	return rounds, err
}

// UpsertSessionSummary inserts or replaces the session aggregate and stamps
// the session complete.
func UpsertSessionSummary(ctx context.Context, s models.SessionSummary) error {
	err := database.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(&s).Error
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return database.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND completed_at IS NULL", s.SessionID).
		Update("completed_at", now).Error
}

// UpdateSessionPerformance attaches the client's frame metrics to the session.
func UpdateSessionPerformance(ctx context.Context, sessionID string, perf telemetry.FrameMetrics) error {
	return database.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"avg_frame_ms":   perf.AvgFrameMs,
			"p95_frame_ms":   perf.P95FrameMs,
			"dropped_frames": perf.DroppedFrames,
			"sampling_hz":    perf.SamplingHzEstimated,
			"input_lag_ms":   perf.InputLagMsEstimate,
			"perf_frames":    perf.Frames,
		}).Error
}
