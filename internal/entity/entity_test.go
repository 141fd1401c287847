package entity

import (
	"testing"

	"github.com/embergrove/murmur/pkg/material"
)

func TestNewAssignsUniqueID(t *testing.T) {
	a := New(nil, 0, 0)
	b := New(nil, 0, 0)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique non-empty ids, got %q and %q", a.ID, b.ID)
	}
}

func TestNewDefaultsOpacityFromMaterial(t *testing.T) {
	start := 0.7
	m := &material.Spec{ID: "glass", Manifestation: material.Manifestation{Aging: material.Aging{StartOpacity: &start}}}
	e := New(m, 0, 0)
	if e.Opacity != 0.7 {
		t.Errorf("Opacity = %v, want 0.7", e.Opacity)
	}
}

func TestNewWithoutMaterialDefaultsOpacityToOne(t *testing.T) {
	e := New(nil, 0, 0)
	if e.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", e.Opacity)
	}
}

func TestTriggerContextResolve(t *testing.T) {
	e := New(nil, 0, 0)
	e.TriggerContext["user.silence"] = 90
	v, ok := e.TriggerContext.Resolve("user.silence")
	if !ok || v != 90 {
		t.Fatalf("Resolve = %v, %v, want 90, true", v, ok)
	}
	if _, ok := e.TriggerContext.Resolve("missing"); ok {
		t.Error("expected missing key to resolve false")
	}
}

func TestOntologyAbsentByDefault(t *testing.T) {
	e := New(nil, 0, 0)
	if e.HasEmotion() || e.HasIntent() {
		t.Error("expected ontology components absent until explicitly attached")
	}
}
