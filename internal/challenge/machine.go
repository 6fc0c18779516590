package challenge

import (
	"fmt"

	"go.uber.org/zap"
)

// Phase is one step of the assessment progression.
type Phase string

const (
	PhaseIntro        Phase = "intro"
	PhaseColorVision  Phase = "color_vision"
	PhaseVisualAcuity Phase = "visual_acuity"
	PhaseReflex       Phase = "reflex"
	PhaseTrivia       Phase = "trivia"
	PhaseComplete     Phase = "complete"
)

// phaseOrder is the strict total order over phases. No skipping, no going
// back.
var phaseOrder = []Phase{
	PhaseIntro,
	PhaseColorVision,
	PhaseVisualAcuity,
	PhaseReflex,
	PhaseTrivia,
	PhaseComplete,
}

// Stages returns the four playable stages in progression order.
func Stages() []Phase {
	return []Phase{PhaseColorVision, PhaseVisualAcuity, PhaseReflex, PhaseTrivia}
}

func phaseIndex(p Phase) int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// isPlayable reports whether p is one of the four playable stages. Intro and
// complete bracket the progression but cannot themselves be completed.
func isPlayable(p Phase) bool {
	for _, s := range Stages() {
		if s == p {
			return true
		}
	}
	return false
}

// StageProgress is the resumable mid-stage progress slice for one stage.
type StageProgress struct {
	Cursor    int      `json:"cursor"`
	Responses []string `json:"accumulatedResponses,omitempty"`
}

// StageResult is the recorded outcome of one completed stage.
type StageResult struct {
	StageID       Phase              `json:"stageId"`
	Correct       int                `json:"correct"`
	Total         int                `json:"total"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	CompletedAtMs float64            `json:"completedAtMs"`
}

// State is the persisted progression state. It is written to the store on
// every mutation and restored verbatim on initialization.
type State struct {
	CurrentPhase Phase                    `json:"currentPhase"`
	StartedAtMs  float64                  `json:"startedAtMs,omitempty"`
	Progress     map[Phase]*StageProgress `json:"challengeProgress"`
	Completed    []Phase                  `json:"completedChallenges"`
	Results      map[Phase]StageResult    `json:"results,omitempty"`
	Badges       []string                 `json:"badges,omitempty"`
}

// Machine drives the ordered assessment progression and persists every
// mutation. It owns no telemetry content; it only gates which stage is active
// and survives page reloads.
type Machine struct {
	log    *zap.Logger
	store  Store
	stages StageSet
	clock  func() float64
	state  State
}

// NewMachine loads any persisted state from the store. A persisted non-intro
// phase with a recorded start time is restored verbatim, including mid-stage
// progress; otherwise the machine starts fresh at intro.
func NewMachine(store Store, stages StageSet, clock func() float64, log *zap.Logger) (*Machine, error) {
	m := &Machine{
		log:    log,
		store:  store,
		stages: stages,
		clock:  clock,
		state:  freshState(),
	}

	var persisted State
	ok, err := store.Get(keyProfile, &persisted)
	if err != nil {
		return nil, fmt.Errorf("load challenge state: %w", err)
	}
	if ok && persisted.CurrentPhase != PhaseIntro && persisted.StartedAtMs > 0 && phaseIndex(persisted.CurrentPhase) >= 0 {
		if persisted.Progress == nil {
			persisted.Progress = make(map[Phase]*StageProgress)
		}
		if persisted.Results == nil {
			persisted.Results = make(map[Phase]StageResult)
		}
		m.state = persisted
		log.Info("resumed challenge progression",
			zap.String("phase", string(persisted.CurrentPhase)),
			zap.Int("completed", len(persisted.Completed)))
	}
	return m, nil
}

func freshState() State {
	return State{
		CurrentPhase: PhaseIntro,
		Progress:     make(map[Phase]*StageProgress),
		Results:      make(map[Phase]StageResult),
	}
}

// Start moves intro to the first stage and records the session start time
// used for elapsed-time stats. Starting an already started machine is a
// no-op.
func (m *Machine) Start() error {
	if m.state.CurrentPhase != PhaseIntro {
		return nil
	}
	m.state.CurrentPhase = phaseOrder[1]
	m.state.StartedAtMs = m.clock()
	return m.persist()
}

// CompleteStage records the stage's result, unlocks its trait badge, clears
// the stage's resumable progress and advances the current phase. A stage can
// complete at most once; repeats neither duplicate the completion entry nor
// move the phase. Completing a stage that is not the current one is rejected.
func (m *Machine) CompleteStage(stage Phase, result StageResult) (badge string, err error) {
	if !isPlayable(stage) {
		return "", fmt.Errorf("phase %s is not a playable stage", stage)
	}
	for _, done := range m.state.Completed {
		if done == stage {
			return m.stages.Badge(stage), nil
		}
	}
	if stage != m.state.CurrentPhase {
		return "", fmt.Errorf("stage %s is not active (current phase %s)", stage, m.state.CurrentPhase)
	}

	result.StageID = stage
	if result.CompletedAtMs == 0 {
		result.CompletedAtMs = m.clock()
	}
	m.state.Results[stage] = result
	m.state.Completed = append(m.state.Completed, stage)

	// Completed progress is cleared so a reload cannot resume into a stage
	// that already finished.
	delete(m.state.Progress, stage)

	badge = m.stages.Badge(stage)
	if badge != "" {
		m.state.Badges = append(m.state.Badges, badge)
	}

	next := phaseIndex(stage) + 1
	if next >= len(phaseOrder) {
		next = len(phaseOrder) - 1
	}
	m.state.CurrentPhase = phaseOrder[next]

	return badge, m.persist()
}

// UpdateProgress replaces the named stage's progress slice without touching
// the current phase. Used for mid-stage resumability. A late write for a stage
// that already completed is tolerated but dropped: completion cleared that
// progress and a reload must not resume into a finished stage.
func (m *Machine) UpdateProgress(stage Phase, progress StageProgress) error {
	if !isPlayable(stage) {
		return fmt.Errorf("unknown stage %s", stage)
	}
	for _, done := range m.state.Completed {
		if done == stage {
			return nil
		}
	}
	p := progress
	m.state.Progress[stage] = &p
	return m.persist()
}

// Reset clears all persisted state and reinitializes from scratch. This is
// the only way back to intro once left.
func (m *Machine) Reset() error {
	if err := m.store.Delete(keyProfile); err != nil {
		return err
	}
	m.state = freshState()
	return nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.state.CurrentPhase
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() State {
	out := m.state
	out.Progress = make(map[Phase]*StageProgress, len(m.state.Progress))
	for k, v := range m.state.Progress {
		p := *v
		out.Progress[k] = &p
	}
	out.Completed = append([]Phase(nil), m.state.Completed...)
	out.Badges = append([]string(nil), m.state.Badges...)
	out.Results = make(map[Phase]StageResult, len(m.state.Results))
	for k, v := range m.state.Results {
		out.Results[k] = v
	}
	return out
}

func (m *Machine) persist() error {
	if err := m.store.Put(keyProfile, m.state); err != nil {
		return fmt.Errorf("persist challenge state: %w", err)
	}
	return nil
}
