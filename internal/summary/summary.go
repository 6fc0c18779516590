// Package summary computes the backend-side aggregates the client requests
// after round and session completion. The client owns only the trigger.
package summary

import (
	"sort"

	"aura/internal/models"
)

// ComputeRound aggregates one round's attempts. Reaction-time statistics are
// computed over hits only; escaped targets contribute to the miss count and
// hit rate but carry lifetimes, not reactions.
func ComputeRound(sessionID string, round int, attempts []models.MotorAttempt) models.RoundSummary {
	s := models.RoundSummary{
		SessionID: sessionID,
		Round:     round,
		Attempts:  len(attempts),
	}

	var reactions []float64
	var errSum float64
	var errCount int
	for _, a := range attempts {
		if a.Hit {
			s.Hits++
			reactions = append(reactions, a.ReactionTimeMs)
			if a.ErrorDistNorm != nil {
				errSum += *a.ErrorDistNorm
				errCount++
			}
		} else {
			s.Misses++
		}
	}

	if s.Attempts > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Attempts)
	}
	if len(reactions) > 0 {
		s.MeanReactionMs = mean(reactions)
		s.MedianReactionMs = median(reactions)
	}
	if errCount > 0 {
		s.MeanErrorDistNorm = errSum / float64(errCount)
	}
	return s
}

// ComputeSession rolls the round summaries up into one session aggregate,
// fitting a least-squares slope over the per-round mean reaction times as a
// fatigue/learning trend signal.
func ComputeSession(sessionID string, rounds []models.RoundSummary) models.SessionSummary {
	s := models.SessionSummary{
		SessionID: sessionID,
		Rounds:    len(rounds),
	}

	var reactionMeans []float64
	var reactionWeightedSum float64
	var reactionHitCount int
	for _, r := range rounds {
		s.Attempts += r.Attempts
		s.Hits += r.Hits
		if r.Hits > 0 {
			reactionMeans = append(reactionMeans, r.MeanReactionMs)
			reactionWeightedSum += r.MeanReactionMs * float64(r.Hits)
			reactionHitCount += r.Hits
		}
	}

	if s.Attempts > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Attempts)
	}
	if reactionHitCount > 0 {
		s.MeanReactionMs = reactionWeightedSum / float64(reactionHitCount)
	}
	s.RoundReactionMeans = reactionMeans
	s.ReactionTrendSlope = slope(reactionMeans)
	return s
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// slope fits y = a + b·x over (index, value) pairs and returns b. Fewer than
// two points have no trend.
func slope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
