package world

import (
	"testing"

	"github.com/embergrove/murmur/internal/needs"
	"github.com/embergrove/murmur/pkg/material"
)

func newTestWorld() *World {
	cfg := DefaultConfig()
	cfg.RNGSeed = 7
	return New(cfg, material.NewCatalog())
}

func TestSpawnAttachesOntologyAndEmitsEvent(t *testing.T) {
	w := newTestWorld()

	var got SpawnPayload
	fired := false
	w.Events.Subscribe("spawn", func(payload any) {
		fired = true
		got = payload.(SpawnPayload)
	})

	mat := &material.Spec{ID: "ember"}
	e := w.Spawn(mat, 10, 20)

	if !fired {
		t.Fatal("expected spawn event to fire")
	}
	if got.EntityID != e.ID || got.MaterialID != "ember" || got.X != 10 || got.Y != 20 {
		t.Errorf("unexpected spawn payload: %+v", got)
	}
	if !e.HasEmotion() {
		t.Error("expected emotion ontology attached")
	}
	if e.Memory == nil || e.Log == nil || e.Intent == nil || e.Relationships == nil || e.CognitiveLinks == nil || e.Needs == nil {
		t.Error("expected every ontology component attached on spawn")
	}
	if !e.IsAutonomous {
		t.Error("expected spawned entity to be autonomous")
	}
	if recent := e.Memory.Recall(nil); len(recent) != 1 || recent[0].Salience != 1.0 {
		t.Errorf("expected a single spawn memory event with salience 1.0, got %+v", recent)
	}
	if w.Get(e.ID) != e {
		t.Error("expected Get to find the spawned entity")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestSpawnWithNeeds(t *testing.T) {
	w := newTestWorld()
	mat := &material.Spec{
		ID: "hungry-ember",
		Needs: material.Needs{Resources: []material.ResourceNeed{
			{ID: "food", Initial: 1, DepletionRate: 0.1, CriticalThreshold: 0.3, EmotionalImpact: 0.5},
		}},
	}
	e := w.Spawn(mat, 0, 0)

	n := e.Needs.Get("food")
	if n == nil {
		t.Fatal("expected food need registered")
	}
	if n.EmotionalImpact.Valence != -0.5 {
		t.Errorf("EmotionalImpact.Valence = %v, want -0.5 (negated scalar onto valence only)", n.EmotionalImpact.Valence)
	}
	if n.EmotionalImpact.Arousal != 0 || n.EmotionalImpact.Dominance != 0 {
		t.Errorf("expected arousal/dominance unaffected by the scalar mapping, got %+v", n.EmotionalImpact)
	}
}

func TestRemoveEntityRecordsClimateDeathAndEmits(t *testing.T) {
	w := newTestWorld()
	e := w.Spawn(&material.Spec{ID: "ember"}, 0, 0)

	before := *w.Climate

	var got DestroyPayload
	fired := false
	w.Events.Subscribe("destroy", func(payload any) {
		fired = true
		got = payload.(DestroyPayload)
	})

	w.RemoveEntity(e.ID)

	if !fired || got.EntityID != e.ID {
		t.Errorf("expected destroy event for %s, got fired=%v payload=%+v", e.ID, fired, got)
	}
	if w.Get(e.ID) != nil {
		t.Error("expected entity removed from lookup")
	}
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
	if w.Climate.Grief <= before.Grief {
		t.Errorf("expected grief to rise on entity death: before=%v after=%v", before.Grief, w.Climate.Grief)
	}
}

func TestRemoveEntityUnknownIDIsNoop(t *testing.T) {
	w := newTestWorld()
	w.RemoveEntity("does-not-exist")
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
}

func TestTickAdvancesClockAndTickCount(t *testing.T) {
	w := newTestWorld()
	w.Spawn(&material.Spec{ID: "ember"}, 0, 0)

	w.Tick(0.5)
	if w.Clock != 0.5 {
		t.Errorf("Clock = %v, want 0.5", w.Clock)
	}
	if w.TickCount != 1 {
		t.Errorf("TickCount = %v, want 1", w.TickCount)
	}

	w.Tick(0.5)
	if w.Clock != 1.0 {
		t.Errorf("Clock = %v, want 1.0", w.Clock)
	}
	if w.TickCount != 2 {
		t.Errorf("TickCount = %v, want 2", w.TickCount)
	}
}

func TestTickDrivesEngineIntegration(t *testing.T) {
	w := newTestWorld()
	a := w.Spawn(&material.Spec{ID: "ember"}, 100, 100)
	a.Entropy = 0.5
	b := w.Spawn(&material.Spec{ID: "ember"}, 110, 100)
	b.Entropy = 0.5

	w.Tick(1)

	if a.VX == 0 && a.VY == 0 && b.VX == 0 && b.VY == 0 {
		t.Error("expected the engine to have moved at least one entity")
	}
}

func TestTickDecaysNeedsAndRelationships(t *testing.T) {
	w := newTestWorld()
	mat := &material.Spec{
		ID: "ember",
		Needs: material.Needs{Resources: []material.ResourceNeed{
			{ID: "food", Initial: 1, DepletionRate: 0.2},
		}},
	}
	a := w.Spawn(mat, 0, 0)
	b := w.Spawn(mat, 5, 5)
	a.Relationships.Reinforce(b.ID, 0.5, 0.5, w.Clock)

	w.Tick(1)

	if got := a.Needs.Get("food").Current; got >= 1 {
		t.Errorf("expected food need to deplete, got %v", got)
	}
	bond := a.Relationships.Get(b.ID)
	if bond == nil {
		t.Fatal("expected bond to survive one decay tick")
	}
	if bond.Familiarity >= 0.5 {
		t.Errorf("expected familiarity to decay, got %v", bond.Familiarity)
	}
}

func TestRecordSpeechAppendsTranscriptAndEmits(t *testing.T) {
	w := newTestWorld()

	var got UtterancePayload
	fired := false
	w.Events.Subscribe("utterance", func(payload any) {
		fired = true
		got = payload.(UtterancePayload)
	})

	w.RecordSpeech("alice", "hello there", "bob", nil)

	if !fired {
		t.Fatal("expected utterance event to fire")
	}
	if got.Speaker != "alice" || got.Listener != "bob" || got.Text != "hello there" {
		t.Errorf("unexpected utterance payload: %+v", got)
	}
	if len(w.Transcript.All()) != 1 {
		t.Errorf("expected transcript to hold 1 utterance, got %d", len(w.Transcript.All()))
	}
}

func TestBroadcastEventSetsTriggerContext(t *testing.T) {
	w := newTestWorld()
	e := w.Spawn(&material.Spec{ID: "ember"}, 0, 0)

	w.BroadcastEvent("storm", map[string]float64{"intensity": 0.8})

	if v, ok := e.TriggerContext.Resolve("event.storm.intensity"); !ok || v != 0.8 {
		t.Errorf("event.storm.intensity = %v,%v, want 0.8,true", v, ok)
	}
	if v, ok := e.TriggerContext.Resolve("event.storm"); !ok || v != 1 {
		t.Errorf("event.storm = %v,%v, want 1,true", v, ok)
	}
}

func TestBroadcastContextMergesIntoEveryEntity(t *testing.T) {
	w := newTestWorld()
	e := w.Spawn(&material.Spec{ID: "ember"}, 0, 0)

	w.BroadcastContext(map[string]float64{"season": 2})

	if v, ok := e.TriggerContext.Resolve("season"); !ok || v != 2 {
		t.Errorf("season = %v,%v, want 2,true", v, ok)
	}
}

func TestResourceFieldOperations(t *testing.T) {
	w := newTestWorld()
	w.AddResourceField(&needs.Field{
		ID: "spring", ResourceType: "water", Kind: needs.Point,
		X: 0, Y: 0, Radius: 10, Intensity: 1,
	})

	if got := w.GetResourceIntensity("water", 0, 0); got <= 0 {
		t.Errorf("GetResourceIntensity = %v, want > 0", got)
	}
	consumed := w.ConsumeResource("water", 0, 0, 0.5)
	if consumed <= 0 {
		t.Errorf("ConsumeResource = %v, want > 0", consumed)
	}
}

func TestSpawnFieldRegistersTransientField(t *testing.T) {
	w := newTestWorld()
	f := w.SpawnField("heatwave", 1, 2, 30, 10, map[string]any{"emotion": map[string]float64{"valence": 0.1}})

	if f.ID == "" {
		t.Error("expected generated field id")
	}
	if w.Fields.Get(f.ID) == nil {
		t.Error("expected field registered in world.Fields")
	}
}

func TestTickFiresClimateChangeOnLabelTransition(t *testing.T) {
	w := newTestWorld()
	w.Climate.Grief = 0.61 // just past the "grieving" threshold

	changed := false
	var got ClimateChangePayload
	w.Events.Subscribe("climate.change", func(payload any) {
		changed = true
		got = payload.(ClimateChangePayload)
	})

	w.Tick(20) // large dt: drift-to-baseline should pull grief back under 0.6

	if !changed {
		t.Fatal("expected climate.change once baseline drift crosses the grieving threshold")
	}
	if got.Label == "grieving" {
		t.Errorf("expected the new label to no longer be grieving, got %q", got.Label)
	}
}
