package repository

import (
	"context"

	"aura/internal/database"
	"aura/internal/models"
	"aura/internal/telemetry"
)

// SaveTraceSamples persists one round's pointer trace in batches.
func SaveTraceSamples(ctx context.Context, sessionID, participantID string, samples []telemetry.PointerSample) error {
	if len(samples) == 0 {
		return nil
	}
	rows := make([]models.MotorTrace, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, models.MotorTrace{
			SessionID:     sessionID,
			ParticipantID: participantID,
			Round:         s.Round,
			TMs:           s.TMs,
			XNorm:         s.XNorm,
			YNorm:         s.YNorm,
			IsDown:        s.IsDown,
			PointerKind:   s.PointerKind,
		})
	}
	return database.DB.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// SaveAttempts persists a batch of attempt records.
func SaveAttempts(ctx context.Context, sessionID, participantID string, attempts []telemetry.AttemptRecord) error {
	if len(attempts) == 0 {
		return nil
	}
	rows := make([]models.MotorAttempt, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, models.MotorAttempt{
			SessionID:      sessionID,
			ParticipantID:  participantID,
			Round:          a.Round,
			BubbleID:       a.BubbleID,
			TargetXNorm:    a.TargetXNorm,
			TargetYNorm:    a.TargetYNorm,
			TargetRNorm:    a.TargetRNorm,
			ClickXNorm:     a.ClickXNorm,
			ClickYNorm:     a.ClickYNorm,
			Hit:            a.Hit,
			ReactionTimeMs: a.ReactionTimeMs,
			ErrorDistNorm:  a.ErrorDistNorm,
			Timestamp:      a.Timestamp,
		})
	}
	return database.DB.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// GetRoundAttempts returns one round's attempts in arrival order.
func GetRoundAttempts(ctx context.Context, sessionID string, round int) ([]models.MotorAttempt, error) {
	var attempts []models.MotorAttempt
	err := database.DB.WithContext(ctx).
		Where("session_id = ? AND round = ?", sessionID, round).
		Order("timestamp").
		Find(&attempts).Error
	return attempts, err
}

// PurgeTracesBefore deletes raw traces older than the retention horizon and
// reports how many rows went away.
func PurgeTracesBefore(ctx context.Context, cutoffDays int) (int64, error) {
	res := database.DB.WithContext(ctx).
		Exec(`DELETE FROM motor_traces WHERE created_at < NOW() - make_interval(days => ?)`, cutoffDays)
	return res.RowsAffected, res.Error
}
