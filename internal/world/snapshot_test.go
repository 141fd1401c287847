package world

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/embergrove/murmur/internal/diagnostics"
	"github.com/embergrove/murmur/pkg/material"
)

func buildPopulatedWorld(seed uint32) (*World, *material.Catalog) {
	catalog := material.NewCatalog()
	mat := &material.Spec{
		ID: "ember",
		Needs: material.Needs{Resources: []material.ResourceNeed{
			{ID: "food", Initial: 1, DepletionRate: 0.05, CriticalThreshold: 0.3, EmotionalImpact: 0.4},
		}},
	}
	catalog.Register(mat)

	cfg := DefaultConfig()
	cfg.RNGSeed = seed
	w := New(cfg, catalog)

	a := w.Spawn(mat, 10, 10)
	b := w.Spawn(mat, 20, 10)
	a.Entropy, b.Entropy = 0.4, 0.6
	a.Relationships.Reinforce(b.ID, 0.6, 0.7, w.Clock)
	a.CognitiveLinks.Reinforce(b.ID, 0.5, w.Clock)
	w.RecordSpeech(a.ID, "hello there friend", b.ID, a.Emotion)

	for i := 0; i < 5; i++ {
		w.Tick(0.25)
	}
	return w, catalog
}

// TestRestoreSnapshotRoundTripIsByteIdentical checks the round-trip half of
// invariant 6: a world restored from snapshot(W)'s JSON re-snapshots to
// exactly the same bytes. TestRestoreThenTickMatchesUnrestoredTick covers
// advancing both worlds afterwards.
func TestRestoreSnapshotRoundTripIsByteIdentical(t *testing.T) {
	w, catalog := buildPopulatedWorld(42)

	snap := w.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	restored := Restore(decoded, DefaultConfig(), catalog)

	restoredSnap := restored.Snapshot()
	restoredData, err := json.Marshal(restoredSnap)
	if err != nil {
		t.Fatalf("marshal restored snapshot: %v", err)
	}

	if string(restoredData) != string(data) {
		t.Errorf("restored snapshot does not match original:\noriginal: %s\nrestored: %s", data, restoredData)
	}
}

// TestRestoreThenTickMatchesUnrestoredTick checks that advancing a restored
// world produces the same state as advancing the original, confirming
// restore doesn't silently drop state needed for correct future ticks.
func TestRestoreThenTickMatchesUnrestoredTick(t *testing.T) {
	original, catalog := buildPopulatedWorld(1)
	snap := original.Snapshot()
	restored := Restore(snap, DefaultConfig(), catalog)

	original.Tick(0.3)
	restored.Tick(0.3)

	originalData, err := json.Marshal(original.Snapshot())
	if err != nil {
		t.Fatalf("marshal original: %v", err)
	}
	restoredData, err := json.Marshal(restored.Snapshot())
	if err != nil {
		t.Fatalf("marshal restored: %v", err)
	}

	if string(originalData) != string(restoredData) {
		t.Errorf("ticking the restored world diverged from the original:\noriginal: %s\nrestored: %s", originalData, restoredData)
	}
}

// TestSeededWorldsProduceIdenticalTrajectories checks invariant 7: two
// worlds constructed with the same seed and driven by the same dt sequence
// produce identical state.
func TestSeededWorldsProduceIdenticalTrajectories(t *testing.T) {
	w1, _ := buildPopulatedWorld(99)
	w2, _ := buildPopulatedWorld(99)

	for i := 0; i < 10; i++ {
		w1.Tick(0.1)
		w2.Tick(0.1)
	}

	d1, err := json.Marshal(w1.Snapshot())
	if err != nil {
		t.Fatalf("marshal w1: %v", err)
	}
	d2, err := json.Marshal(w2.Snapshot())
	if err != nil {
		t.Fatalf("marshal w2: %v", err)
	}
	if string(d1) != string(d2) {
		t.Errorf("same-seed worlds diverged:\nw1: %s\nw2: %s", d1, d2)
	}
}

// TestSnapshotPreservesUnknownKeys checks spec.md §6.2's forward-compatible
// round-trip: a key this build doesn't recognize survives an
// unmarshal/marshal cycle unchanged.
func TestSnapshotPreservesUnknownKeys(t *testing.T) {
	w, _ := buildPopulatedWorld(5)
	data, err := json.Marshal(w.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to raw map: %v", err)
	}
	raw["futureFeature"] = json.RawMessage(`{"fromTheFuture":true}`)
	withExtra, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal with extra key: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(withExtra, &snap); err != nil {
		t.Fatalf("unmarshal with extra key: %v", err)
	}
	roundTripped, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal round-tripped snapshot: %v", err)
	}

	var final map[string]json.RawMessage
	if err := json.Unmarshal(roundTripped, &final); err != nil {
		t.Fatalf("unmarshal final: %v", err)
	}
	future, ok := final["futureFeature"]
	if !ok {
		t.Fatal("expected unrecognized key futureFeature to survive the round trip")
	}
	var futurePayload map[string]bool
	if err := json.Unmarshal(future, &futurePayload); err != nil {
		t.Fatalf("unmarshal futureFeature payload: %v", err)
	}
	if !futurePayload["fromTheFuture"] {
		t.Error("expected futureFeature payload to round-trip unchanged")
	}
}

// TestRestoreSkipsMissingMaterialReference checks the MissingReference
// policy: an entity or field referencing a material the catalog no longer
// carries is still restored, minus that material, with a diagnostic fired
// through whichever observers are subscribed at the time.
func TestRestoreSkipsMissingMaterialReference(t *testing.T) {
	w, _ := buildPopulatedWorld(3)
	snap := w.Snapshot()

	// Simulate a catalog that has since lost the referenced material.
	emptyCatalog := material.NewCatalog()
	restored := Restore(snap, DefaultConfig(), emptyCatalog)

	if restored.Len() != len(snap.Entities) {
		t.Errorf("expected every entity restored even without its material, got %d want %d", restored.Len(), len(snap.Entities))
	}
	for _, e := range restored.Entities() {
		if e.Material != nil {
			t.Errorf("expected entity %s to have no material after its spec was dropped", e.ID)
		}
	}
}

// TestDiagnosticsRegistryWarnfReachesSubscribers confirms the mechanism
// Restore relies on to surface MissingReference: a subscriber registered
// before the warning fires receives it.
func TestDiagnosticsRegistryWarnfReachesSubscribers(t *testing.T) {
	reg := diagnostics.NewRegistry()
	var got diagnostics.Diagnostic
	fired := false
	reg.Subscribe(func(d diagnostics.Diagnostic) {
		fired = true
		got = d
	})

	reg.Warnf(diagnostics.MissingReference, "entity-1", "material %q not registered", "ghost")

	if !fired {
		t.Fatal("expected subscriber to observe the warning")
	}
	if got.Kind != diagnostics.MissingReference {
		t.Errorf("Kind = %v, want MissingReference", got.Kind)
	}
	if got.Path != "entity-1" {
		t.Errorf("Path = %q, want %q", got.Path, "entity-1")
	}
}

// TestFieldSnapshotRoundTrip checks transient fields survive a restore.
func TestFieldSnapshotRoundTrip(t *testing.T) {
	w, catalog := buildPopulatedWorld(2)
	f := w.SpawnField("", 1, 2, 15, 30, map[string]any{"emotion": map[string]float64{"valence": 0.2}})

	snap := w.Snapshot()
	restored := Restore(snap, DefaultConfig(), catalog)

	got := restored.Fields.Get(f.ID)
	if got == nil {
		t.Fatal("expected field to survive restore")
	}
	if got.X != 1 || got.Y != 2 || got.Radius != 15 {
		t.Errorf("field geometry mismatch after restore: %+v", got)
	}
	if !reflect.DeepEqual(got.Payload, f.Payload) {
		t.Errorf("payload mismatch after restore: got %+v want %+v", got.Payload, f.Payload)
	}
}
