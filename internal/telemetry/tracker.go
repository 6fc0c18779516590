package telemetry

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// Tracker is the single owner of one assessment session's telemetry pipeline:
// sampler, kinematics analyzer, event log, delivery buffer and perf monitor.
// The host UI holds one Tracker per session and drives it through the inbound
// calls below; all of them are synchronous and none of them block on network
// delivery.
type Tracker struct {
	log    *zap.Logger
	cfg    Config
	client *Client
	clock  func() float64

	sessionID     string
	participantID string

	sampler  *Sampler
	kin      *Kinematics
	events   *EventLog
	delivery *Delivery
	perf     *PerfMonitor

	active      bool
	perfStarted bool
	completed   bool
	round       int
	pattern     []int
	targets     map[string]Target
	hits        int
	misses      int
	viewportW   float64
	viewportH   float64
}

// NewTracker wires up a telemetry pipeline for one session. client may be nil
// for offline/local use; delivery then degrades to local aggregation only.
func NewTracker(cfg Config, client *Client, sessionID, participantID string, log *zap.Logger) *Tracker {
	cfg = cfg.Normalize()
	t := &Tracker{
		log:           log,
		cfg:           cfg,
		client:        client,
		clock:         nowMs,
		sessionID:     sessionID,
		participantID: participantID,
		sampler:       NewSampler(cfg, log),
		kin:           NewKinematics(cfg),
		perf:          NewPerfMonitor(cfg),
		targets:       make(map[string]Target),
	}
	t.delivery = NewDelivery(cfg, log, t.sendBatch)
	// The viewport provider runs at log time, on the host goroutine; batch
	// flushes only ever see the snapshot it produced.
	t.events = NewEventLog(log, func() (float64, float64) { return t.viewportW, t.viewportH }, t.delivery.Append)
	return t
}

// StartRound arms the pipeline for a new round with the given spawn pattern.
func (t *Tracker) StartRound(round int, pattern []int) {
	if t.completed {
		return
	}
	t.active = true
	t.round = round
	t.pattern = append([]int(nil), pattern...)
	t.hits = 0
	t.misses = 0
	t.targets = make(map[string]Target)
	t.sampler.StartRound(round)
	if !t.perfStarted {
		t.perf.StartTracking()
		t.perfStarted = true
	}
}

// OnPointerDown begins a gesture and feeds the press into the sampler.
func (t *Tracker) OnPointerDown(ev RawPointerEvent) {
	if !t.active {
		return
	}
	ev.Type = PointerDown
	t.captureViewport(ev)
	t.sampler.OnPointerEvent(ev)
	t.perf.RecordInputEvent(ev.TMs)
	t.kin.AddPoint(ev.X, ev.Y, ev.TMs)
}

// OnPointerMove feeds a movement into the sampler and, while the pointer is
// down, into the current gesture's trajectory and overshoot window.
func (t *Tracker) OnPointerMove(ev RawPointerEvent) {
	if !t.active {
		return
	}
	ev.Type = PointerMove
	t.captureViewport(ev)
	down := t.sampler.IsDown()
	t.sampler.OnPointerEvent(ev)
	if down {
		t.kin.AddPoint(ev.X, ev.Y, ev.TMs)
		if dist, radius, ok := t.nearestTarget(ev.X, ev.Y); ok {
			t.kin.TrackProximity(dist, radius)
		}
	}
}

// OnPointerUp ends the gesture. A gesture left unresolved by any target is
// discarded here so trajectory points never leak across gestures.
func (t *Tracker) OnPointerUp(ev RawPointerEvent) {
	if !t.active {
		return
	}
	ev.Type = PointerUp
	t.captureViewport(ev)
	t.sampler.OnPointerEvent(ev)
	if t.kin.PointCount() > 0 {
		t.kin.Resolve()
	}
}

// TargetSpawned registers a new active target and logs its spawn event.
func (t *Tracker) TargetSpawned(target Target) {
	if !t.active {
		return
	}
	if target.SpawnedAtMs == 0 {
		target.SpawnedAtMs = t.clock()
	}
	t.targets[target.ID] = target
	t.events.LogSpawn(t.round, target)
}

// TargetResolved logs the outcome for one target. The current gesture is
// resolved at the same time so its metrics ride along with a hit.
func (t *Tracker) TargetResolved(bubbleID string, out Outcome) {
	if !t.active {
		return
	}
	if out.TMs == 0 {
		out.TMs = t.clock()
	}
	gesture := t.kin.Resolve()
	if out.Hit {
		t.hits++
		t.events.LogHit(t.round, bubbleID, out, gesture)
	} else {
		t.misses++
		t.events.LogMiss(t.round, bubbleID, out.TMs)
	}
	delete(t.targets, bubbleID)
}

// RecordFrame forwards one render-loop tick to the perf monitor. Stale calls
// after teardown are protected no-ops.
func (t *Tracker) RecordFrame() {
	if !t.active {
		return
	}
	t.perf.RecordFrame()
}

// EndRound tears the round down: the sampler is disarmed, the round_end event
// is logged, the delivery buffer is flushed, and the round's pointer trace
// plus summary request are fired without being awaited.
func (t *Tracker) EndRound() {
	if !t.active {
		return
	}
	t.active = false
	t.sampler.Stop()
	t.events.LogRoundEnd(t.round, t.hits, t.misses, t.clock())
	t.delivery.Flush()

	samples := t.sampler.Drain()
	round := t.round
	if t.client != nil {
		go func() {
			ctx := context.Background()
			if len(samples) > 0 {
				err := t.client.PostTrace(ctx, TracePayload{
					SessionID: t.sessionID,
					UserID:    t.participantID,
					Samples:   samples,
				})
				if err != nil {
					t.log.Warn("trace delivery failed", zap.Int("round", round), zap.Error(err))
				}
			}
			if err := t.client.RequestRoundSummary(ctx, t.sessionID, t.participantID, round); err != nil {
				t.log.Warn("round summary request failed", zap.Int("round", round), zap.Error(err))
			}
		}()
	}

	t.targets = make(map[string]Target)
	if t.kin.PointCount() > 0 {
		t.kin.Resolve()
	}
}

// CompleteSession ends any active round, shuts the delivery buffer and fires
// the session summary and performance patch without awaiting them. Calling it
// twice is a no-op.
func (t *Tracker) CompleteSession() {
	if t.completed {
		return
	}
	t.EndRound()
	t.completed = true

	perf := t.perf.StopTracking()
	t.delivery.Complete()

	if t.client != nil {
		go func() {
			ctx := context.Background()
			if err := t.client.RequestSessionSummary(ctx, t.sessionID, t.participantID); err != nil {
				t.log.Warn("session summary request failed", zap.Error(err))
			}
			if perf.Frames > 0 {
				if err := t.client.PatchPerformance(ctx, t.sessionID, perf); err != nil {
					t.log.Warn("performance patch failed", zap.Error(err))
				}
			}
		}()
	}
}

// Events exposes the session event log for local aggregation.
func (t *Tracker) Events() *EventLog {
	return t.events
}

// RoundCounts returns the current round's hit/miss tallies.
func (t *Tracker) RoundCounts() (hits, misses int) {
	return t.hits, t.misses
}

// Active reports whether a round is in progress.
func (t *Tracker) Active() bool {
	return t.active
}

// sendBatch converts a swapped-out event batch into attempt records and posts
// them without blocking the caller. The batch timer may invoke this on its own
// goroutine, so only the batch itself and immutable session fields are read
// here. Failures are logged and discarded.
func (t *Tracker) sendBatch(batch []InteractionEvent) {
	attempts := toAttempts(batch)
	if len(attempts) == 0 || t.client == nil {
		return
	}
	payload := AttemptsPayload{
		SessionID: t.sessionID,
		UserID:    t.participantID,
		Attempts:  attempts,
	}
	go func() {
		if err := t.client.PostAttempts(context.Background(), payload); err != nil {
			t.log.Warn("attempt batch delivery failed", zap.Int("attempts", len(payload.Attempts)), zap.Error(err))
		}
	}()
}

// toAttempts converts hit/miss events into attempt records. Events carry their
// geometry snapshot already, so this is a pure function of the batch.
func toAttempts(batch []InteractionEvent) []AttemptRecord {
	var out []AttemptRecord
	for _, ev := range batch {
		if ev.Type != EventTargetHit && ev.Type != EventTargetMiss {
			continue
		}
		rec := AttemptRecord{
			Round:         ev.Round,
			BubbleID:      ev.BubbleID,
			Hit:           ev.Type == EventTargetHit,
			Timestamp:     ev.Timestamp,
			ClickXNorm:    ev.ClickXNorm,
			ClickYNorm:    ev.ClickYNorm,
			ErrorDistNorm: ev.ErrorDistNorm,
		}
		if ev.ReactionTimeMs != nil {
			rec.ReactionTimeMs = *ev.ReactionTimeMs
		} else if ev.BubbleLifetimeMs != nil {
			rec.ReactionTimeMs = *ev.BubbleLifetimeMs
		}
		if ev.TargetXNorm != nil {
			rec.TargetXNorm = *ev.TargetXNorm
		}
		if ev.TargetYNorm != nil {
			rec.TargetYNorm = *ev.TargetYNorm
		}
		if ev.TargetRNorm != nil {
			rec.TargetRNorm = *ev.TargetRNorm
		}
		out = append(out, rec)
	}
	return out
}

func (t *Tracker) captureViewport(ev RawPointerEvent) {
	if ev.ViewportW > 0 && ev.ViewportH > 0 {
		t.viewportW = ev.ViewportW
		t.viewportH = ev.ViewportH
	}
}

func (t *Tracker) nearestTarget(x, y float64) (dist, radius float64, ok bool) {
	best := math.MaxFloat64
	for _, target := range t.targets {
		dx := x - target.X
		dy := y - target.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < best {
			best = d
			radius = target.Radius
			ok = true
		}
	}
	return best, radius, ok
}
