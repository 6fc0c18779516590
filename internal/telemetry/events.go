package telemetry

import (
	"math"

	"go.uber.org/zap"
)

type spawnRecord struct {
	target   Target
	resolved bool
}

// EventLog turns discrete interaction occurrences into immutable
// InteractionEvents, keeping a session-lifetime history for local aggregation
// and forwarding every event to a sink (the delivery buffer).
type EventLog struct {
	log      *zap.Logger
	viewport func() (w, h float64)
	sink     func(InteractionEvent)

	history []InteractionEvent
	spawns  map[string]*spawnRecord
}

// NewEventLog creates an event log. viewport reports the current viewport
// dimensions so hit/miss geometry can be snapshotted into the event at log
// time; sink receives every constructed event. Both may be nil.
func NewEventLog(log *zap.Logger, viewport func() (w, h float64), sink func(InteractionEvent)) *EventLog {
	return &EventLog{
		log:      log,
		viewport: viewport,
		sink:     sink,
		spawns:   make(map[string]*spawnRecord),
	}
}

// LogSpawn records that a target appeared.
func (e *EventLog) LogSpawn(round int, target Target) {
	e.spawns[target.ID] = &spawnRecord{target: target}
	e.emit(InteractionEvent{
		Type:      EventTargetSpawn,
		Round:     round,
		Timestamp: target.SpawnedAtMs,
		BubbleID:  target.ID,
	})
}

// LogHit records a successful resolution. Reaction time is measured from the
// spawn; click accuracy is the distance from the click point to the target
// center. A hit for an unknown bubble is tolerated: the optional fields stay
// absent rather than surfacing an error to gameplay.
func (e *EventLog) LogHit(round int, bubbleID string, out Outcome, gesture GestureMetrics) {
	ev := InteractionEvent{
		Type:      EventTargetHit,
		Round:     round,
		Timestamp: out.TMs,
		BubbleID:  bubbleID,
		Gesture:   &gesture,
	}

	if rec, ok := e.spawns[bubbleID]; ok && !rec.resolved {
		rec.resolved = true
		reaction := out.TMs - rec.target.SpawnedAtMs
		dx := out.ClickX - rec.target.X
		dy := out.ClickY - rec.target.Y
		accuracy := math.Sqrt(dx*dx + dy*dy)
		cx, cy := out.ClickX, out.ClickY
		ev.ReactionTimeMs = &reaction
		ev.ClickAccuracy = &accuracy
		ev.ClickX = &cx
		ev.ClickY = &cy
		e.attachGeometry(&ev, rec.target, &out)
	} else {
		e.log.Warn("hit for unknown or already resolved bubble", zap.String("bubbleId", bubbleID))
	}

	e.emit(ev)
}

// LogMiss records a target that escaped unresolved.
func (e *EventLog) LogMiss(round int, bubbleID string, tMs float64) {
	ev := InteractionEvent{
		Type:      EventTargetMiss,
		Round:     round,
		Timestamp: tMs,
		BubbleID:  bubbleID,
	}

	if rec, ok := e.spawns[bubbleID]; ok && !rec.resolved {
		rec.resolved = true
		lifetime := tMs - rec.target.SpawnedAtMs
		ev.BubbleLifetimeMs = &lifetime
		e.attachGeometry(&ev, rec.target, nil)
	} else {
		e.log.Warn("miss for unknown or already resolved bubble", zap.String("bubbleId", bubbleID))
	}

	e.emit(ev)
}

// LogRoundEnd records the round's aggregate hit/miss counts.
func (e *EventLog) LogRoundEnd(round, hits, misses int, tMs float64) {
	h, m := hits, misses
	e.emit(InteractionEvent{
		Type:      EventRoundEnd,
		Round:     round,
		Timestamp: tMs,
		Hits:      &h,
		Misses:    &m,
	})
}

// attachGeometry snapshots the target's normalized position and, for hits,
// the normalized click point and error distance. Skipped when the viewport is
// unknown, leaving the optional fields absent.
func (e *EventLog) attachGeometry(ev *InteractionEvent, target Target, out *Outcome) {
	if e.viewport == nil {
		return
	}
	w, h := e.viewport()
	if w <= 0 || h <= 0 {
		return
	}
	minDim := math.Min(w, h)

	tx := clamp01(target.X / w)
	ty := clamp01(target.Y / h)
	tr := target.Radius / minDim
	ev.TargetXNorm = &tx
	ev.TargetYNorm = &ty
	ev.TargetRNorm = &tr

	if out != nil {
		cx := clamp01(out.ClickX / w)
		cy := clamp01(out.ClickY / h)
		ev.ClickXNorm = &cx
		ev.ClickYNorm = &cy
		if ev.ClickAccuracy != nil {
			errNorm := *ev.ClickAccuracy / minDim
			ev.ErrorDistNorm = &errNorm
		}
	}
}

func (e *EventLog) emit(ev InteractionEvent) {
	e.history = append(e.history, ev)
	if e.sink != nil {
		e.sink(ev)
	}
}

// History returns a copy of the full session event history.
func (e *EventLog) History() []InteractionEvent {
	out := make([]InteractionEvent, len(e.history))
	copy(out, e.history)
	return out
}

// RoundEvents returns the events logged for one round, in log order.
func (e *EventLog) RoundEvents(round int) []InteractionEvent {
	var out []InteractionEvent
	for _, ev := range e.history {
		if ev.Round == round {
			out = append(out, ev)
		}
	}
	return out
}
