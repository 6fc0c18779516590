package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request through zap. Ingest traffic is chatty, so
// successes stay at debug; dashboard requests are tagged with the participant
// they target.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if pid := c.Param("id"); pid != "" {
			fields = append(fields, zap.String("participant_id", pid))
		}

		switch {
		case status >= 500:
			log.Error("Motor API request failed", fields...)
		case status >= 400:
			log.Warn("Motor API request rejected", fields...)
		default:
			log.Debug("Motor API request served", fields...)
		}
	}
}
