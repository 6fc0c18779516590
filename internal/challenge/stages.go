package challenge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StageDef describes one playable stage as configured in stages.yaml.
type StageDef struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Badge  string `yaml:"badge"`
	Items  int    `yaml:"items"`  // plates, acuity lines, rounds or questions
	TimeMs int    `yaml:"timeMs"` // per-item time limit, 0 = untimed
}

// StageSet holds the configured stage definitions keyed by phase.
type StageSet struct {
	Stages []StageDef `yaml:"stages"`
}

// DefaultStageSet returns the built-in stage configuration used when no
// stages.yaml is provided.
func DefaultStageSet() StageSet {
	return StageSet{Stages: []StageDef{
		{ID: string(PhaseColorVision), Title: "Color Vision", Badge: "chromatic_eye", Items: 4},
		{ID: string(PhaseVisualAcuity), Title: "Visual Acuity", Badge: "eagle_eye", Items: 7},
		{ID: string(PhaseReflex), Title: "Bubble Pop", Badge: "quick_draw", Items: 3, TimeMs: 30000},
		{ID: string(PhaseTrivia), Title: "Trivia", Badge: "trivia_titan", Items: 10, TimeMs: 15000},
	}}
}

// LoadStageSet reads and parses a stages.yaml file.
func LoadStageSet(path string) (StageSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StageSet{}, fmt.Errorf("read stage file: %w", err)
	}
	var set StageSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return StageSet{}, fmt.Errorf("parse stage file: %w", err)
	}
	if len(set.Stages) == 0 {
		return StageSet{}, fmt.Errorf("stage file %s defines no stages", path)
	}
	return set, nil
}

// Badge returns the trait badge unlocked by completing the given stage.
func (s StageSet) Badge(stage Phase) string {
	for _, def := range s.Stages {
		if def.ID == string(stage) {
			return def.Badge
		}
	}
	return ""
}

// Def returns the definition for one stage.
func (s StageSet) Def(stage Phase) (StageDef, bool) {
	for _, def := range s.Stages {
		if def.ID == string(stage) {
			return def, true
		}
	}
	return StageDef{}, false
}
