package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aura/internal/config"
	"aura/internal/repository"
)

// RetentionSweeper periodically deletes raw motor traces past the configured
// retention horizon. Summaries and attempts are kept; only the bulky
// per-sample traces age out.
type RetentionSweeper struct {
	log *zap.Logger
}

func NewRetentionSweeper(log *zap.Logger) *RetentionSweeper {
	return &RetentionSweeper{log: log}
}

// Start runs the sweeper in a goroutine.
func (s *RetentionSweeper) Start() {
	s.log.Info("Starting trace retention sweeper...")
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		s.sweep()
		for {
			<-ticker.C
			s.sweep()
		}
	}()
}

func (s *RetentionSweeper) sweep() {
	maxAge := config.Conf.Retention.TraceMaxAgeDays
	if maxAge <= 0 {
		return
	}

	deleted, err := repository.PurgeTracesBefore(context.Background(), maxAge)
	if err != nil {
		s.log.Error("Failed to purge expired traces", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("Purged expired motor traces", zap.Int64("rows", deleted), zap.Int("max_age_days", maxAge))
	}
}
