package repository

import (
	"context"
	"time"

	"aura/internal/database"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type AccuracyDataPoint struct {
	ReactionTimeMs float64 `json:"reactionTimeMs"`
	ErrorDistNorm  float64 `json:"errorDistNorm"`
}

// GetReactionTimeline returns a participant's per-round mean reaction times
// across all completed sessions, ordered by when the round was summarized.
func GetReactionTimeline(ctx context.Context, participantID string) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	query := `
		SELECT
			rs.updated_at AS date,
			rs.mean_reaction_ms AS value
		FROM round_summaries rs
		JOIN sessions s ON rs.session_id = s.id
		WHERE s.participant_id = ? AND rs.hits > 0
		ORDER BY rs.updated_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, participantID).Scan(&data).Error
	return data, err
}

// GetAccuracyScatter returns reaction time vs. click error for every hit the
// participant has recorded, for the speed/accuracy tradeoff chart.
func GetAccuracyScatter(ctx context.Context, participantID string) ([]AccuracyDataPoint, error) {
	var data []AccuracyDataPoint
	query := `
		SELECT
			reaction_time_ms AS reaction_time_ms,
			error_dist_norm AS error_dist_norm
		FROM motor_attempts
		WHERE participant_id = ? AND hit = true AND error_dist_norm IS NOT NULL
		ORDER BY created_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, participantID).Scan(&data).Error
	return data, err
}
