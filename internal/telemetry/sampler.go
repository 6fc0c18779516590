package telemetry

import "go.uber.org/zap"

// Sampler converts raw pointer signals into normalized, timestamped samples
// at a bounded cadence. Down/up transitions only flip the isDown flag read by
// subsequent samples; they never emit a sample of their own.
type Sampler struct {
	log *zap.Logger

	intervalMs float64
	cap        int

	round   int
	active  bool
	isDown  bool
	primed  bool
	lastTMs float64
	samples []PointerSample
}

// NewSampler creates a sampler capturing at most cfg.SampleHz samples per
// second, retaining at most cfg.SampleCap samples.
func NewSampler(cfg Config, log *zap.Logger) *Sampler {
	cfg = cfg.Normalize()
	return &Sampler{
		log:        log,
		intervalMs: 1000.0 / cfg.SampleHz,
		cap:        cfg.SampleCap,
	}
}

// StartRound arms the sampler for the given round. The throttle window is
// reset so the first move of the round is always captured.
func (s *Sampler) StartRound(round int) {
	s.round = round
	s.active = true
	s.isDown = false
	s.primed = false
	s.lastTMs = 0
}

// Stop disarms the sampler. Late pointer events are ignored until the next
// StartRound.
func (s *Sampler) Stop() {
	s.active = false
}

// OnPointerEvent processes one raw move/down/up signal. Samples with unknown
// viewport dimensions are skipped rather than emitted malformed.
func (s *Sampler) OnPointerEvent(ev RawPointerEvent) {
	if !s.active {
		return
	}

	switch ev.Type {
	case PointerDown:
		s.isDown = true
	case PointerUp:
		s.isDown = false
	case PointerMove:
		// Throttle: at most one sample per interval.
		if s.primed && ev.TMs-s.lastTMs < s.intervalMs {
			return
		}
		if ev.ViewportW <= 0 || ev.ViewportH <= 0 {
			s.log.Debug("skipping pointer sample without viewport dimensions")
			return
		}
		s.primed = true
		s.lastTMs = ev.TMs
		s.append(PointerSample{
			Round:       s.round,
			TMs:         ev.TMs,
			XNorm:       clamp01(ev.X / ev.ViewportW),
			YNorm:       clamp01(ev.Y / ev.ViewportH),
			IsDown:      s.isDown,
			PointerKind: ev.Kind,
		})
	}
}

func (s *Sampler) append(sample PointerSample) {
	s.samples = append(s.samples, sample)
	if len(s.samples) > s.cap {
		// Soft cap: evict oldest. Features only look at recent windows, so
		// losing old samples has no correctness impact.
		s.samples = s.samples[len(s.samples)-s.cap:]
	}
}

// Samples returns a copy of the retained samples.
func (s *Sampler) Samples() []PointerSample {
	out := make([]PointerSample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Recent returns a copy of the most recent n samples.
func (s *Sampler) Recent(n int) []PointerSample {
	if n > len(s.samples) {
		n = len(s.samples)
	}
	out := make([]PointerSample, n)
	copy(out, s.samples[len(s.samples)-n:])
	return out
}

// Drain returns the retained samples and clears the buffer. Used at round end
// to hand the round's trace off for delivery.
func (s *Sampler) Drain() []PointerSample {
	out := s.samples
	s.samples = nil
	return out
}

// IsDown reports the current press state.
func (s *Sampler) IsDown() bool {
	return s.isDown
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
