package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aura/internal/config"
	"aura/internal/repository"
	"aura/internal/summary"
	"aura/internal/telemetry"
)

type MotorHandler struct {
	log *zap.Logger
}

func NewMotorHandler(log *zap.Logger) *MotorHandler {
	return &MotorHandler{log: log}
}

// EngineConfig handles GET /motor/config. The capture engine pulls its
// tunables from here at startup, so a config edit on the server reaches
// clients on their next session.
func (h *MotorHandler) EngineConfig(c *gin.Context) {
	cfg := config.Conf.Telemetry.Engine()
	c.JSON(http.StatusOK, gin.H{
		"sampleHz":       cfg.SampleHz,
		"sampleCap":      cfg.SampleCap,
		"batchSize":      cfg.BatchSize,
		"batchTimeoutMs": cfg.BatchTimeout.Milliseconds(),
		"frameBudgetMs":  cfg.FrameBudgetMs,
	})
}

// Trace handles POST /motor/trace.
func (h *MotorHandler) Trace(c *gin.Context) {
	var payload telemetry.TracePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Error("Failed to bind trace payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if payload.SessionID == "" || payload.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and userId are required"})
		return
	}

	if _, err := repository.GetOrCreateSession(c.Request.Context(), payload.SessionID, payload.UserID); err != nil {
		h.log.Error("Failed to resolve session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}

	if err := repository.SaveTraceSamples(c.Request.Context(), payload.SessionID, payload.UserID, payload.Samples); err != nil {
		h.log.Error("Failed to save trace samples", zap.Error(err), zap.Int("samples", len(payload.Samples)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save trace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(payload.Samples)})
}

// Attempts handles POST /motor/attempts.
func (h *MotorHandler) Attempts(c *gin.Context) {
	var payload telemetry.AttemptsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Error("Failed to bind attempts payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if payload.SessionID == "" || payload.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and userId are required"})
		return
	}

	if _, err := repository.GetOrCreateSession(c.Request.Context(), payload.SessionID, payload.UserID); err != nil {
		h.log.Error("Failed to resolve session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}

	if err := repository.SaveAttempts(c.Request.Context(), payload.SessionID, payload.UserID, payload.Attempts); err != nil {
		h.log.Error("Failed to save attempts", zap.Error(err), zap.Int("attempts", len(payload.Attempts)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attempts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(payload.Attempts)})
}

type roundSummaryRequest struct {
	SessionID     string `json:"sessionId" binding:"required"`
	ParticipantID string `json:"participantId" binding:"required"`
	// Pointer so a zero-based round survives the required check.
	Round *int `json:"round" binding:"required"`
}

// RoundSummary handles POST /motor/summary/round: it recomputes the round's
// aggregate from stored attempts and upserts it.
func (h *MotorHandler) RoundSummary(c *gin.Context) {
	var req roundSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	round := *req.Round
	attempts, err := repository.GetRoundAttempts(c.Request.Context(), req.SessionID, round)
	if err != nil {
		h.log.Error("Failed to load round attempts", zap.Error(err), zap.Int("round", round))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attempts"})
		return
	}

	s := summary.ComputeRound(req.SessionID, round, attempts)
	if err := repository.UpsertRoundSummary(c.Request.Context(), s); err != nil {
		h.log.Error("Failed to save round summary", zap.Error(err), zap.Int("round", round))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save summary"})
		return
	}

	c.JSON(http.StatusOK, s)
}

type sessionSummaryRequest struct {
	SessionID     string `json:"sessionId" binding:"required"`
	ParticipantID string `json:"participantId" binding:"required"`
}

// SessionSummary handles POST /motor/summary/session.
func (h *MotorHandler) SessionSummary(c *gin.Context) {
	var req sessionSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	rounds, err := repository.GetRoundSummaries(c.Request.Context(), req.SessionID)
	if err != nil {
		h.log.Error("Failed to load round summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rounds"})
		return
	}

	s := summary.ComputeSession(req.SessionID, rounds)
	if err := repository.UpsertSessionSummary(c.Request.Context(), s); err != nil {
		h.log.Error("Failed to save session summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save summary"})
		return
	}

	c.JSON(http.StatusOK, s)
}
