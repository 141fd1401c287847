// Package engine implements the tick core: the canonical per-tick
// ordering of pre-update, pairwise information-physics forces over the
// spatial grid, field application, integration + bounds, and post-update
// hooks.
//
// Grounded on a tick-driven simulation loop that owns an ordered entity
// set and fires subscriber callbacks at fixed points in the tick —
// generalized here from a settlement/economy tick to spec.md's
// information-physics force law, and reduced from an async event bus to
// synchronous per-entity hooks (spec.md §5: the core never suspends or
// awaits).
package engine

import (
	"math"

	"github.com/embergrove/murmur/internal/entity"
	"github.com/embergrove/murmur/internal/field"
	"github.com/embergrove/murmur/internal/intent"
	"github.com/embergrove/murmur/internal/spatial"
)

// BoundsPolicy names how an out-of-bounds position is resolved.
type BoundsPolicy int

const (
	BoundsNone BoundsPolicy = iota
	BoundsClamp
	BoundsBounce
)

// Bounds is an axis-aligned world boundary.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	Policy                 BoundsPolicy
	Damping                float64 // used by BoundsBounce; default 0.85
}

// Config parameterizes one Engine.
type Config struct {
	Bounds            Bounds
	DefaultProximity  float64 // used when an entity's proximity radius resolves to 0
	FieldEffect       FieldEffectFunc
	AutonomousCoin    func() bool // RNG tie-break for the rest/observe autonomous choice
}

// FieldEffectFunc applies a field's payload to an entity within range,
// over dt seconds. The effect itself is material/payload-specific and is
// supplied by the caller (internal/world) rather than hard-coded here.
type FieldEffectFunc func(e *entity.Entity, f *field.Field, dt float64)

// Engine runs the tick algorithm over an ordered entity set, a field set,
// and a spatial grid the caller owns.
type Engine struct {
	cfg Config
}

// New returns an Engine governed by cfg.
func New(cfg Config) *Engine {
	if cfg.Bounds.Damping == 0 {
		cfg.Bounds.Damping = 0.85
	}
	if cfg.DefaultProximity == 0 {
		cfg.DefaultProximity = 160
	}
	return &Engine{cfg: cfg}
}

// ProximityEvent is emitted for every pair within the close-proximity
// radius (80, per spec.md §4.1.2), in the order pairs are discovered.
type ProximityEvent struct {
	A, B     *entity.Entity
	Distance float64
}

// Tick advances entities one step of dt seconds, following the canonical
// five-phase order. grid must already index every entity at its current
// position; Tick updates it in place as entities move. Returns the
// proximity events raised during phase 2, in discovery order.
func (e *Engine) Tick(entities []*entity.Entity, fields *field.Set, grid *spatial.Grid, now, dt float64) []ProximityEvent {
	e.preUpdate(entities, now, dt)
	events := e.pairwiseInteraction(entities, grid, dt)
	e.updateFields(entities, fields, dt)
	e.integrateAndBound(entities, grid, dt)
	e.postUpdate(entities)
	return events
}

func (e *Engine) preUpdate(entities []*entity.Entity, now, dt float64) {
	for _, ent := range entities {
		ent.Age += dt
		if ent.Material != nil {
			ent.Opacity -= ent.Material.OpacityDecayRate() * dt
		}
		if ent.Opacity < 0 {
			ent.Opacity = 0
		} else if ent.Opacity > 1 {
			ent.Opacity = 1
		}

		friction := ent.Friction()
		ent.VX *= (1 - friction)
		ent.VY *= (1 - friction)

		if ent.IsAutonomous && ent.HasIntent() && ent.Intent.Empty() && ent.HasEmotion() {
			coin := e.cfg.AutonomousCoin
			if coin == nil {
				coin = func() bool { return true }
			}
			ent.Intent.Push(intent.Autonomous(*ent.Emotion, now, coin))
		}
	}
}

func (e *Engine) pairwiseInteraction(entities []*entity.Entity, grid *spatial.Grid, dt float64) []ProximityEvent {
	var events []ProximityEvent
	for _, a := range entities {
		if !finitePosVel(a) {
			continue
		}
		radius := a.ProximityRadius()
		if radius == 0 {
			radius = e.cfg.DefaultProximity
		}
		candidates := grid.Query(a.X, a.Y, radius, "")
		for _, bid := range candidates {
			if bid <= a.ID {
				continue // deterministic tie-break: only id(B) > id(A)
			}
			b := findByID(entities, bid)
			if b == nil || !finitePosVel(b) {
				continue
			}

			dx, dy := b.X-a.X, b.Y-a.Y
			d := math.Max(1, math.Hypot(dx, dy))
			if d >= radius {
				continue
			}

			similarity := 1 - math.Abs(a.Entropy-b.Entropy)
			k := 0.05 * similarity
			ix, iy := (dx/d)*k*dt, (dy/d)*k*dt

			a.VX += ix
			a.VY += iy
			b.VX -= ix
			b.VY -= iy

			if d < 80 {
				if a.Hooks.OnProximity != nil {
					a.Hooks.OnProximity(a, b, d)
				}
				if b.Hooks.OnProximity != nil {
					b.Hooks.OnProximity(b, a, d)
				}
				events = append(events, ProximityEvent{A: a, B: b, Distance: d})
			}
		}
	}
	return events
}

// updateFields decrements every field's remaining lifetime, applies its
// effect to overlapping entities (even on the tick it expires), then
// removes expired fields after the loop — spec.md §4.1 step 3.
func (e *Engine) updateFields(entities []*entity.Entity, fields *field.Set, dt float64) {
	if fields == nil {
		return
	}
	all := fields.All()
	expired := make([]*field.Field, 0, len(all))
	for _, f := range all {
		if f.Tick(dt) {
			expired = append(expired, f)
		}
		if e.cfg.FieldEffect != nil {
			for _, ent := range entities {
				if f.Affects(ent.X, ent.Y) {
					e.cfg.FieldEffect(ent, f, dt)
				}
			}
		}
	}
	for _, f := range expired {
		fields.Remove(f.ID)
	}
}

func (e *Engine) integrateAndBound(entities []*entity.Entity, grid *spatial.Grid, dt float64) {
	for _, ent := range entities {
		if !finitePosVel(ent) {
			continue
		}
		oldX, oldY := ent.X, ent.Y
		ent.X += ent.VX
		ent.Y += ent.VY
		e.applyBounds(ent)
		grid.Update(ent.ID, ent.X, ent.Y)
		_ = oldX
		_ = oldY
	}
}

func (e *Engine) applyBounds(ent *entity.Entity) {
	b := e.cfg.Bounds
	if b.Policy == BoundsNone {
		return
	}
	if ent.X < b.MinX {
		ent.X = b.MinX
		ent.VX = e.reflect(ent.VX, b)
	} else if ent.X > b.MaxX {
		ent.X = b.MaxX
		ent.VX = e.reflect(ent.VX, b)
	}
	if ent.Y < b.MinY {
		ent.Y = b.MinY
		ent.VY = e.reflect(ent.VY, b)
	} else if ent.Y > b.MaxY {
		ent.Y = b.MaxY
		ent.VY = e.reflect(ent.VY, b)
	}
}

func (e *Engine) reflect(v float64, b Bounds) float64 {
	switch b.Policy {
	case BoundsClamp:
		return 0
	case BoundsBounce:
		return -v * b.Damping
	default:
		return v
	}
}

func (e *Engine) postUpdate(entities []*entity.Entity) {
	for _, ent := range entities {
		if ent.Hooks.OnUpdate != nil {
			ent.Hooks.OnUpdate(ent)
		}
	}
}

func finitePosVel(e *entity.Entity) bool {
	return !math.IsNaN(e.X) && !math.IsNaN(e.Y) && !math.IsNaN(e.VX) && !math.IsNaN(e.VY) &&
		!math.IsInf(e.X, 0) && !math.IsInf(e.Y, 0) && !math.IsInf(e.VX, 0) && !math.IsInf(e.VY, 0)
}

func findByID(entities []*entity.Entity, id string) *entity.Entity {
	for _, e := range entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}
