// Package entity implements the simulation's agent type. Ontology
// sub-systems (memory, emotion, intent, relationships, cognitive links,
// needs) are modeled as an "optional mixin": each is a pointer field that
// is either present or nil, so enabling a feature is "attach the
// component" and isEnabled is a nil check, with no runtime class
// extension. Entities hold only ids for their peers — the World owns the
// id-indexed lookup, so entity-to-entity references never become object
// cycles.
package entity

import (
	"github.com/google/uuid"

	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/intent"
	"github.com/embergrove/murmur/internal/link"
	"github.com/embergrove/murmur/internal/memorylog"
	"github.com/embergrove/murmur/internal/needs"
	"github.com/embergrove/murmur/internal/relationship"
	"github.com/embergrove/murmur/pkg/material"
)

// TriggerContext is a flat, dotted-path keyed value map consulted by
// behavior conditions and emotion transitions. It implements
// internal/expr.Context directly.
type TriggerContext map[string]float64

// Resolve implements expr.Context.
func (c TriggerContext) Resolve(path string) (float64, bool) {
	v, ok := c[path]
	return v, ok
}

// Merge copies every key from other into c, overwriting on conflict.
func (c TriggerContext) Merge(other map[string]float64) {
	for k, v := range other {
		c[k] = v
	}
}

// Hooks are optional per-entity lifecycle callbacks, the tick-driven
// analogue of the source's event-loop bindings (spec.md §9): onProximity
// fires during pairwise interaction, onUpdate after integration.
type Hooks struct {
	OnProximity func(self *Entity, peer *Entity, distance float64)
	OnUpdate    func(self *Entity)
}

// Entity is one simulated agent.
type Entity struct {
	ID       string
	Material *material.Spec

	X, Y   float64
	VX, VY float64

	Age     float64
	Entropy float64
	Energy  float64
	Opacity float64

	// Ontology — each is nil when the corresponding feature is disabled.
	Emotion        *emotion.PAD
	Memory         *memorylog.Ring
	Log            *memorylog.Log
	Intent         *intent.Stack
	Relationships  *relationship.Store
	CognitiveLinks *link.Set
	Needs          *needs.Store

	TriggerContext     TriggerContext
	LanguagePreference []string
	IsAutonomous       bool

	Hooks Hooks
}

// New constructs an entity with a fresh random id. Callers attach
// whichever ontology components the material calls for; New itself only
// fills in the fields spec.md §3.1 always carries.
func New(mat *material.Spec, x, y float64) *Entity {
	e := &Entity{
		ID:             uuid.NewString(),
		Material:       mat,
		X:              x,
		Y:              y,
		TriggerContext: make(TriggerContext),
	}
	if mat != nil {
		e.Opacity = mat.StartOpacity()
	} else {
		e.Opacity = 1
	}
	return e
}

// PointID implements internal/spatial.Point.
func (e *Entity) PointID() string { return e.ID }

// PointXY implements internal/spatial.Point.
func (e *Entity) PointXY() (float64, float64) { return e.X, e.Y }

// HasEmotion reports whether the emotion ontology is attached.
func (e *Entity) HasEmotion() bool { return e.Emotion != nil }

// HasIntent reports whether the intent stack ontology is attached.
func (e *Entity) HasIntent() bool { return e.Intent != nil }

// Friction returns the owning material's friction, or the documented
// default if the entity has no material.
func (e *Entity) Friction() float64 {
	if e.Material != nil {
		return e.Material.Friction()
	}
	return material.DefaultFriction
}

// ProximityRadius returns the owning material's proximity radius, or the
// documented default.
func (e *Entity) ProximityRadius() float64 {
	if e.Material != nil {
		return e.Material.ProximityRadius()
	}
	return material.DefaultProximityRadius
}
