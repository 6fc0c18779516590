package telemetry

import (
	"math"
	"sort"
)

// PerfMonitor measures per-frame timing, dropped frames and input-to-process
// lag over the lifetime of the reflex task. The result is device/quality
// context, not a per-user skill signal, and is computed once at StopTracking.
type PerfMonitor struct {
	budgetMs  float64
	maxLagMs  float64
	clock     func() float64
	tracking  bool
	lastTMs   float64
	deltas    []float64
	dropped   int
	inputLags []float64
}

// NewPerfMonitor creates a monitor with cfg's frame budget and lag ceiling.
func NewPerfMonitor(cfg Config) *PerfMonitor {
	cfg = cfg.Normalize()
	return &PerfMonitor{
		budgetMs: cfg.FrameBudgetMs,
		maxLagMs: cfg.MaxInputLagMs,
		clock:    nowMs,
	}
}

// StartTracking resets the accumulators and arms the monitor.
func (p *PerfMonitor) StartTracking() {
	p.tracking = true
	p.lastTMs = 0
	p.deltas = nil
	p.dropped = 0
	p.inputLags = nil
}

// RecordFrame is called once per rendering frame. Deltas beyond 1.5× the
// nominal frame budget count dropped frames proportionally.
func (p *PerfMonitor) RecordFrame() {
	if !p.tracking {
		return
	}
	now := p.clock()
	if p.lastTMs > 0 {
		delta := now - p.lastTMs
		p.deltas = append(p.deltas, delta)
		if delta > 1.5*p.budgetMs {
			p.dropped += int(delta/p.budgetMs) - 1
		}
	}
	p.lastTMs = now
}

// RecordInputEvent captures the lag between an input's original timestamp and
// the time it was processed. Negative or implausibly large lags are
// measurement artifacts and are dropped.
func (p *PerfMonitor) RecordInputEvent(eventTMs float64) {
	if !p.tracking {
		return
	}
	lag := p.clock() - eventTMs
	if lag < 0 || lag > p.maxLagMs {
		return
	}
	p.inputLags = append(p.inputLags, lag)
}

// StopTracking disarms the monitor and computes the final metrics. With no
// recorded frames the zero-value metrics are returned.
func (p *PerfMonitor) StopTracking() FrameMetrics {
	p.tracking = false

	m := FrameMetrics{Frames: len(p.deltas)}
	if len(p.deltas) == 0 {
		return m
	}

	var sum float64
	for _, d := range p.deltas {
		sum += d
	}
	m.AvgFrameMs = sum / float64(len(p.deltas))
	if m.AvgFrameMs > 0 {
		m.SamplingHzEstimated = 1000 / m.AvgFrameMs
	}

	sorted := make([]float64, len(p.deltas))
	copy(sorted, p.deltas)
	sort.Float64s(sorted)
	m.P95FrameMs = sorted[int(math.Ceil(0.95*float64(len(sorted))))-1]

	m.DroppedFrames = p.dropped

	if len(p.inputLags) > 0 {
		var lagSum float64
		for _, l := range p.inputLags {
			lagSum += l
		}
		m.InputLagMsEstimate = lagSum / float64(len(p.inputLags))
	}

	return m
}
