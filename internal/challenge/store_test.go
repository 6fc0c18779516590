package challenge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Put("profile", map[string]string{"phase": "reflex"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got map[string]string
	ok, err := store.Get("profile", &got)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got["phase"] != "reflex" {
		t.Errorf("expected phase reflex, got %q", got["phase"])
	}

	// Entries are namespaced on disk.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"aura:profile"`) {
		t.Errorf("expected namespaced key on disk, got %s", data)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}

	var v string
	ok, err := store.Get("absent", &v)
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Put("k", 42); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatal(err)
	}

	var v int
	if ok, _ := store.Get("k", &v); ok {
		t.Fatal("expected key gone after delete")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	m, err := NewMachine(store, DefaultStageSet(), func() float64 { return 1000 }, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CompleteStage(PhaseColorVision, StageResult{Correct: 2, Total: 4}); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	resumed, err := NewMachine(reopened, DefaultStageSet(), func() float64 { return 2000 }, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if resumed.Phase() != PhaseVisualAcuity {
		t.Fatalf("expected visual_acuity after reopen, got %s", resumed.Phase())
	}
}

func TestEnsureParticipantIDStable(t *testing.T) {
	store := NewMemStore()

	first, err := EnsureParticipantID(store)
	if err != nil {
		t.Fatalf("EnsureParticipantID: %v", err)
	}
	if first == "" {
		t.Fatal("expected a generated participant id")
	}

	second, err := EnsureParticipantID(store)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatalf("participant id must be stable, got %q then %q", first, second)
	}
}
