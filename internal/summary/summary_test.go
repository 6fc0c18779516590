package summary

import (
	"math"
	"testing"

	"aura/internal/models"
)

func hit(reactionMs float64, errDist float64) models.MotorAttempt {
	e := errDist
	return models.MotorAttempt{Hit: true, ReactionTimeMs: reactionMs, ErrorDistNorm: &e}
}

func miss(lifetimeMs float64) models.MotorAttempt {
	return models.MotorAttempt{Hit: false, ReactionTimeMs: lifetimeMs}
}

func TestComputeRoundHitsOnlyReactions(t *testing.T) {
	attempts := []models.MotorAttempt{
		hit(300, 0.01),
		hit(500, 0.03),
		miss(3000),
		hit(400, 0.02),
		miss(3000),
	}

	s := ComputeRound("s1", 2, attempts)
	if s.SessionID != "s1" || s.Round != 2 {
		t.Fatalf("summary misaddressed: %+v", s)
	}
	if s.Attempts != 5 || s.Hits != 3 || s.Misses != 2 {
		t.Fatalf("expected 5/3/2 attempts/hits/misses, got %d/%d/%d", s.Attempts, s.Hits, s.Misses)
	}
	if s.HitRate != 0.6 {
		t.Errorf("expected hit rate 0.6, got %v", s.HitRate)
	}
	// Escaped-target lifetimes must not contaminate reaction stats.
	if s.MeanReactionMs != 400 {
		t.Errorf("expected mean reaction 400ms over hits only, got %v", s.MeanReactionMs)
	}
	if s.MedianReactionMs != 400 {
		t.Errorf("expected median reaction 400ms, got %v", s.MedianReactionMs)
	}
	if math.Abs(s.MeanErrorDistNorm-0.02) > 1e-9 {
		t.Errorf("expected mean error dist 0.02, got %v", s.MeanErrorDistNorm)
	}
}

func TestComputeRoundEmpty(t *testing.T) {
	s := ComputeRound("s1", 1, nil)
	if s.Attempts != 0 || s.HitRate != 0 || s.MeanReactionMs != 0 {
		t.Fatalf("expected zero-value summary for empty round, got %+v", s)
	}
}

func TestComputeRoundMedianEvenCount(t *testing.T) {
	attempts := []models.MotorAttempt{hit(200, 0), hit(600, 0), hit(300, 0), hit(500, 0)}
	s := ComputeRound("s1", 1, attempts)
	if s.MedianReactionMs != 400 {
		t.Errorf("expected median 400 over even count, got %v", s.MedianReactionMs)
	}
}

func TestComputeSessionWeightedMeanAndSlope(t *testing.T) {
	rounds := []models.RoundSummary{
		{Round: 1, Attempts: 5, Hits: 4, MeanReactionMs: 500},
		{Round: 2, Attempts: 5, Hits: 2, MeanReactionMs: 450},
		{Round: 3, Attempts: 5, Hits: 4, MeanReactionMs: 400},
	}

	s := ComputeSession("s1", rounds)
	if s.Rounds != 3 || s.Attempts != 15 || s.Hits != 10 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if math.Abs(s.HitRate-10.0/15.0) > 1e-9 {
		t.Errorf("expected hit rate 2/3, got %v", s.HitRate)
	}

	// Hit-weighted mean: (500*4 + 450*2 + 400*4) / 10.
	if math.Abs(s.MeanReactionMs-450) > 1e-9 {
		t.Errorf("expected weighted mean 450ms, got %v", s.MeanReactionMs)
	}

	// Per-round means descend 50ms per round: the fitted slope is -50.
	if math.Abs(s.ReactionTrendSlope-(-50)) > 1e-9 {
		t.Errorf("expected trend slope -50, got %v", s.ReactionTrendSlope)
	}
	if len(s.RoundReactionMeans) != 3 {
		t.Errorf("expected 3 round means retained, got %d", len(s.RoundReactionMeans))
	}
}

func TestComputeSessionSkipsHitlessRounds(t *testing.T) {
	rounds := []models.RoundSummary{
		{Round: 1, Attempts: 3, Hits: 0},
		{Round: 2, Attempts: 3, Hits: 3, MeanReactionMs: 600},
	}

	s := ComputeSession("s1", rounds)
	if s.MeanReactionMs != 600 {
		t.Errorf("hitless round must not drag the mean, got %v", s.MeanReactionMs)
	}
	if len(s.RoundReactionMeans) != 1 {
		t.Errorf("expected 1 round mean, got %d", len(s.RoundReactionMeans))
	}
	if s.ReactionTrendSlope != 0 {
		t.Errorf("single point has no trend, got %v", s.ReactionTrendSlope)
	}
}

func TestComputeSessionEmpty(t *testing.T) {
	s := ComputeSession("s1", nil)
	if s.Rounds != 0 || s.HitRate != 0 || s.ReactionTrendSlope != 0 {
		t.Fatalf("expected zero-value session summary, got %+v", s)
	}
}
