package telemetry

import "time"

// PointerEventType discriminates the raw signals the host UI forwards.
type PointerEventType string

const (
	PointerMove PointerEventType = "move"
	PointerDown PointerEventType = "down"
	PointerUp   PointerEventType = "up"
)

// RawPointerEvent is the unprocessed signal delivered by the host UI layer.
// Coordinates are in device pixels; ViewportW/H are the viewport dimensions
// at the time the event fired.
type RawPointerEvent struct {
	Type      PointerEventType
	X         float64
	Y         float64
	ViewportW float64
	ViewportH float64
	Kind      string // "mouse", "touch", "pen"
	TMs       float64
}

// PointerSample is one normalized, timestamped pointer observation.
// XNorm/YNorm are in [0,1] relative to the viewport at capture time.
// Samples are immutable once appended.
type PointerSample struct {
	Round       int     `json:"round"`
	TMs         float64 `json:"tMs"`
	XNorm       float64 `json:"xNorm"`
	YNorm       float64 `json:"yNorm"`
	IsDown      bool    `json:"isDown"`
	PointerKind string  `json:"pointerKind"`
}

// Target is a transient on-screen object ("bubble") the player must resolve.
// Position and radius are in device pixels.
type Target struct {
	ID          string
	X           float64
	Y           float64
	Radius      float64
	SpawnedAtMs float64
}

// Outcome describes how a target was resolved by the host UI.
type Outcome struct {
	Hit    bool
	ClickX float64
	ClickY float64
	TMs    float64
}

// EventType discriminates InteractionEvent records.
type EventType string

const (
	EventTargetSpawn EventType = "target_spawn"
	EventTargetHit   EventType = "target_hit"
	EventTargetMiss  EventType = "target_miss"
	EventRoundEnd    EventType = "round_end"
)

// InteractionEvent is one immutable discrete interaction record. Optional
// fields are nil when they do not apply to the event type, or when the
// referenced target is unknown.
type InteractionEvent struct {
	Type             EventType       `json:"eventType"`
	Round            int             `json:"round"`
	Timestamp        float64         `json:"timestamp"`
	BubbleID         string          `json:"bubbleId,omitempty"`
	ReactionTimeMs   *float64        `json:"reactionTime,omitempty"`
	ClickAccuracy    *float64        `json:"clickAccuracy,omitempty"`
	ClickX           *float64        `json:"clickX,omitempty"`
	ClickY           *float64        `json:"clickY,omitempty"`
	BubbleLifetimeMs *float64        `json:"bubbleLifetime,omitempty"`
	Hits             *int            `json:"hits,omitempty"`
	Misses           *int            `json:"misses,omitempty"`
	Gesture          *GestureMetrics `json:"gesture,omitempty"`

	// Geometry snapshot, captured against the viewport at log time. Events
	// must be self-contained once buffered: the batch flush may run on the
	// timer goroutine and cannot reach back into live session state.
	TargetXNorm   *float64 `json:"targetXNorm,omitempty"`
	TargetYNorm   *float64 `json:"targetYNorm,omitempty"`
	TargetRNorm   *float64 `json:"targetRNorm,omitempty"`
	ClickXNorm    *float64 `json:"clickXNorm,omitempty"`
	ClickYNorm    *float64 `json:"clickYNorm,omitempty"`
	ErrorDistNorm *float64 `json:"errorDistNorm,omitempty"`
}

// AttemptRecord is the wire shape for one hit or escaped target. Positions
// and radius are normalized against the viewport; ErrorDistNorm is the
// click-to-center distance normalized by the smaller screen dimension.
type AttemptRecord struct {
	Round          int      `json:"round"`
	BubbleID       string   `json:"bubbleId"`
	TargetXNorm    float64  `json:"targetXNorm"`
	TargetYNorm    float64  `json:"targetYNorm"`
	TargetRNorm    float64  `json:"targetRNorm"`
	ClickXNorm     *float64 `json:"clickXNorm,omitempty"`
	ClickYNorm     *float64 `json:"clickYNorm,omitempty"`
	Hit            bool     `json:"hit"`
	ReactionTimeMs float64  `json:"reactionTimeMs"`
	ErrorDistNorm  *float64 `json:"errorDistNorm,omitempty"`
	Timestamp      float64  `json:"timestamp"`
}

// TracePayload is the body of POST /motor/trace.
type TracePayload struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	Samples   []PointerSample `json:"samples"`
}

// AttemptsPayload is the body of POST /motor/attempts.
type AttemptsPayload struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	Attempts  []AttemptRecord `json:"attempts"`
}

// FrameMetrics is the device/quality context produced by the PerfMonitor.
type FrameMetrics struct {
	SamplingHzEstimated float64 `json:"samplingHzEstimated"`
	AvgFrameMs          float64 `json:"avgFrameMs"`
	P95FrameMs          float64 `json:"p95FrameMs"`
	DroppedFrames       int     `json:"droppedFrames"`
	InputLagMsEstimate  float64 `json:"inputLagMsEstimate"`
	Frames              int     `json:"frames"`
}

// Config holds the telemetry engine tunables. Zero values are replaced by
// defaults in Normalize, so a zero Config is usable.
type Config struct {
	SampleHz       float64
	SampleCap      int
	BatchSize      int
	BatchTimeout   time.Duration
	FrameBudgetMs  float64
	TrajectoryCap  int
	MaxInputLagMs  float64
	ProximityScale float64 // overshoot proximity threshold, in target radii
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		SampleHz:       30,
		SampleCap:      1000,
		BatchSize:      15,
		BatchTimeout:   5 * time.Second,
		FrameBudgetMs:  1000.0 / 60.0,
		TrajectoryCap:  100,
		MaxInputLagMs:  500,
		ProximityScale: 4,
	}
}

// Normalize fills unset fields with their defaults.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.SampleHz <= 0 {
		c.SampleHz = d.SampleHz
	}
	if c.SampleCap <= 0 {
		c.SampleCap = d.SampleCap
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = d.BatchTimeout
	}
	if c.FrameBudgetMs <= 0 {
		c.FrameBudgetMs = d.FrameBudgetMs
	}
	if c.TrajectoryCap <= 0 {
		c.TrajectoryCap = d.TrajectoryCap
	}
	if c.MaxInputLagMs <= 0 {
		c.MaxInputLagMs = d.MaxInputLagMs
	}
	if c.ProximityScale <= 0 {
		c.ProximityScale = d.ProximityScale
	}
	return c
}

func nowMs() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}
