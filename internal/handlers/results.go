package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"aura/internal/repository"
	"aura/internal/telemetry"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

type performancePatch struct {
	SessionID string                 `json:"sessionId" binding:"required"`
	Perf      telemetry.FrameMetrics `json:"perf" binding:"required"`
}

// PatchPerformance handles PATCH /results/session/performance.
func (h *ResultsHandler) PatchPerformance(c *gin.Context) {
	var req performancePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if err := repository.UpdateSessionPerformance(c.Request.Context(), req.SessionID, req.Perf); err != nil {
		h.log.Error("Failed to update session performance", zap.Error(err), zap.String("sessionId", req.SessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update performance"})
		return
	}

	c.Status(http.StatusOK)
}

// Dashboard handles GET /dashboard/participant/:id, rendering the reaction
// timeline and the speed/accuracy tradeoff for one participant.
func (h *ResultsHandler) Dashboard(c *gin.Context) {
	participantID := c.Param("id")

	timeline, err := repository.GetReactionTimeline(c.Request.Context(), participantID)
	if err != nil {
		h.log.Error("Failed to get reaction timeline", zap.Error(err), zap.String("participantId", participantID))
		c.String(http.StatusInternalServerError, "Failed to load timeline data")
		return
	}

	scatterData, err := repository.GetAccuracyScatter(c.Request.Context(), participantID)
	if err != nil {
		h.log.Error("Failed to get accuracy scatter", zap.Error(err), zap.String("participantId", participantID))
		c.String(http.StatusInternalServerError, "Failed to load accuracy data")
		return
	}

	page := components.NewPage()
	page.SetPageTitle("Aura Motor Results")
	page.AddCharts(
		generateTimelineChart(timeline),
		generateAccuracyChart(scatterData),
	)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render dashboard", zap.Error(err))
	}
}

func generateTimelineChart(data []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Mean Reaction Time Over Rounds",
			Subtitle: "milliseconds, hits only",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries("Reaction Time (ms)", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateAccuracyChart(data []repository.AccuracyDataPoint) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Speed vs. Accuracy",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "reaction time ms",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "click error (normalized)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.ScatterData, 0)
	for _, point := range data {
		items = append(items, opts.ScatterData{Value: []interface{}{point.ReactionTimeMs, point.ErrorDistNorm}})
	}

	scatter.AddSeries("Hits", items)
	return scatter
}
