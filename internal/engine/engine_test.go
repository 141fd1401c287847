package engine

import (
	"math"
	"testing"

	"github.com/embergrove/murmur/internal/entity"
	"github.com/embergrove/murmur/internal/field"
	"github.com/embergrove/murmur/internal/spatial"
	"github.com/embergrove/murmur/pkg/material"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// TestTwoBodyAttractionScenarioS1 reproduces spec.md's two-body scenario:
// two entities of equal entropy within proximity range accelerate toward
// each other with exactly equal and opposite impulses.
func TestTwoBodyAttractionScenarioS1(t *testing.T) {
	a := entity.New(nil, 100, 100)
	a.Entropy = 0.5
	b := entity.New(nil, 110, 100)
	b.Entropy = 0.5

	grid := spatial.New(50)
	grid.Insert(a.ID, a.X, a.Y)
	grid.Insert(b.ID, b.X, b.Y)

	eng := New(Config{Bounds: Bounds{Policy: BoundsNone}})
	entities := []*entity.Entity{a, b}
	if a.ID > b.ID {
		entities = []*entity.Entity{b, a}
	}

	eng.Tick(entities, field.NewSet(), grid, 0, 1)

	if a.VX == 0 && a.VY == 0 {
		t.Fatal("expected entity A to have accelerated")
	}
	if b.VX == 0 && b.VY == 0 {
		t.Fatal("expected entity B to have accelerated")
	}
	if !near(a.VX+b.VX, 0, 1e-9) {
		t.Errorf("sum of vx = %v, want 0", a.VX+b.VX)
	}
	if !near(a.VY+b.VY, 0, 1e-9) {
		t.Errorf("sum of vy = %v, want 0", a.VY+b.VY)
	}
}

// TestBoundsBounceScenarioS2 reproduces spec.md's bounce-bounds scenario.
// The entity's material sets friction to 0 so the only velocity change is
// the bounce itself: -10 reflected and damped by 0.85 gives 8.5.
func TestBoundsBounceScenarioS2(t *testing.T) {
	frictionless := 0.0
	e := entity.New(&material.Spec{ID: "s2", Physics: material.Physics{Friction: &frictionless}}, 5, 5)
	e.VX, e.VY = -10, 0

	grid := spatial.New(50)
	grid.Insert(e.ID, e.X, e.Y)

	eng := New(Config{Bounds: Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100, Policy: BoundsBounce, Damping: 0.85}})
	eng.Tick([]*entity.Entity{e}, field.NewSet(), grid, 0, 1)

	if !near(e.X, 0, 1e-9) {
		t.Errorf("x = %v, want 0", e.X)
	}
	if !near(e.VX, 8.5, 1e-9) {
		t.Errorf("vx = %v, want 8.5", e.VX)
	}
}

func TestBoundsClampZeroesVelocity(t *testing.T) {
	e := entity.New(nil, 5, 50)
	e.VX, e.VY = -10, 0

	grid := spatial.New(50)
	grid.Insert(e.ID, e.X, e.Y)

	eng := New(Config{Bounds: Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100, Policy: BoundsClamp}})
	eng.Tick([]*entity.Entity{e}, field.NewSet(), grid, 0, 1)

	if e.X != 0 {
		t.Errorf("x = %v, want 0", e.X)
	}
	if e.VX != 0 {
		t.Errorf("vx = %v, want 0", e.VX)
	}
}

func TestNonFiniteVelocityStopsMovingForTick(t *testing.T) {
	e := entity.New(nil, 10, 10)
	e.VX = math.NaN()

	grid := spatial.New(50)
	grid.Insert(e.ID, e.X, e.Y)

	eng := New(Config{Bounds: Bounds{Policy: BoundsNone}})
	eng.Tick([]*entity.Entity{e}, field.NewSet(), grid, 0, 1)

	if e.X != 10 || e.Y != 10 {
		t.Errorf("expected position unchanged when velocity is non-finite, got (%v,%v)", e.X, e.Y)
	}
}

func TestOpacityDecaysAndClamps(t *testing.T) {
	e := entity.New(nil, 0, 0)
	e.Opacity = 0.05

	eng := New(Config{})
	eng.preUpdate([]*entity.Entity{e}, 0, 10)

	if e.Opacity < 0 || e.Opacity > 1 {
		t.Errorf("opacity out of range: %v", e.Opacity)
	}
}

func TestFrictionDampensVelocity(t *testing.T) {
	e := entity.New(nil, 0, 0)
	e.VX, e.VY = 10, 10

	eng := New(Config{})
	eng.preUpdate([]*entity.Entity{e}, 0, 1)

	if e.VX >= 10 || e.VY >= 10 {
		t.Errorf("expected friction to reduce velocity, got (%v,%v)", e.VX, e.VY)
	}
}

func TestProximityEventFiresWithinCloseRadius(t *testing.T) {
	a := entity.New(nil, 0, 0)
	a.Entropy = 0.5
	b := entity.New(nil, 30, 0)
	b.Entropy = 0.5

	grid := spatial.New(50)
	grid.Insert(a.ID, a.X, a.Y)
	grid.Insert(b.ID, b.X, b.Y)

	eng := New(Config{Bounds: Bounds{Policy: BoundsNone}})
	events := eng.Tick([]*entity.Entity{a, b}, field.NewSet(), grid, 0, 1)

	if len(events) != 1 {
		t.Fatalf("expected 1 proximity event, got %d", len(events))
	}
	if !near(events[0].Distance, 30, 1e-9) {
		t.Errorf("distance = %v, want 30", events[0].Distance)
	}
}

func TestFieldExpiresAndEffectAppliesOnFinalTick(t *testing.T) {
	e := entity.New(nil, 0, 0)
	grid := spatial.New(50)
	grid.Insert(e.ID, e.X, e.Y)

	fs := field.NewSet()
	fs.Add(&field.Field{ID: "f1", X: 0, Y: 0, Radius: 10, RemainingLifetime: 1})

	applied := 0
	eng := New(Config{
		Bounds:      Bounds{Policy: BoundsNone},
		FieldEffect: func(ent *entity.Entity, f *field.Field, dt float64) { applied++ },
	})
	eng.Tick([]*entity.Entity{e}, fs, grid, 0, 1)

	if applied != 1 {
		t.Errorf("expected field effect to apply once before expiry-removal, got %d", applied)
	}
	if fs.Get("f1") != nil {
		t.Error("expected expired field removed after tick")
	}
}
