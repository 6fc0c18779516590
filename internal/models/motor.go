package models

import (
	"time"

	"github.com/lib/pq"
)

// Session is one assessment session. Frame/performance context arrives late
// via PATCH /results/session/performance and is stored inline.
type Session struct {
	ID            string `gorm:"primaryKey;size:36"`
	ParticipantID string `gorm:"size:36;index"`
	StartedAt     time.Time
	CompletedAt   *time.Time

	// Device/quality context from the client's frame metrics collector.
	AvgFrameMs    float64
	P95FrameMs    float64
	DroppedFrames int
	SamplingHz    float64
	InputLagMs    float64
	PerfFrames    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MotorTrace is one normalized pointer sample from the reflex task.
type MotorTrace struct {
	ID            int    `gorm:"primaryKey"`
	SessionID     string `gorm:"size:36;index:idx_trace_session"`
	ParticipantID string `gorm:"size:36"`
	Round         int
	TMs           float64
	XNorm         float64
	YNorm         float64
	IsDown        bool
	PointerKind   string `gorm:"size:16"`
	CreatedAt     time.Time
}

// MotorAttempt is one hit or escaped target with its accuracy features.
type MotorAttempt struct {
	ID             int    `gorm:"primaryKey"`
	SessionID      string `gorm:"size:36;index:idx_attempt_session"`
	ParticipantID  string `gorm:"size:36"`
	Round          int
	BubbleID       string `gorm:"size:64"`
	TargetXNorm    float64
	TargetYNorm    float64
	TargetRNorm    float64
	ClickXNorm     *float64
	ClickYNorm     *float64
	Hit            bool
	ReactionTimeMs float64
	ErrorDistNorm  *float64
	Timestamp      float64
	CreatedAt      time.Time
}

// RoundSummary is the backend-computed aggregate for one round, upserted on
// each POST /motor/summary/round.
type RoundSummary struct {
	ID                int    `gorm:"primaryKey"`
	SessionID         string `gorm:"size:36;uniqueIndex:idx_round_summary"`
	Round             int    `gorm:"uniqueIndex:idx_round_summary"`
	Attempts          int
	Hits              int
	Misses            int
	HitRate           float64
	MeanReactionMs    float64
	MedianReactionMs  float64
	MeanErrorDistNorm float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SessionSummary is the backend-computed aggregate over all of a session's
// rounds. RoundReactionMeans keeps the per-round means the trend slope was
// fitted over.
type SessionSummary struct {
	ID                 int    `gorm:"primaryKey"`
	SessionID          string `gorm:"size:36;uniqueIndex"`
	Rounds             int
	Attempts           int
	Hits               int
	HitRate            float64
	MeanReactionMs     float64
	ReactionTrendSlope float64
	RoundReactionMeans pq.Float64Array `gorm:"type:float8[]"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
