// Package needs implements per-entity resource needs (depletion and
// critical-threshold emotional impact) and world-level resource fields
// that supply those resources spatially.
//
// Generalized from a capacity-constrained, threshold-triggered attention
// store: there, limited attention slots were evicted by priority when
// capacity was exceeded; here, a resource level falling below a critical
// threshold triggers a proportional emotional impact instead of an
// eviction.
package needs

import (
	"math"

	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/rng"
)

// Need is a single resource's state for one entity.
type Need struct {
	ID                string
	Current           float64
	Initial           float64
	DepletionRate     float64
	CriticalThreshold float64
	EmotionalImpact   emotion.PAD
}

// Store holds every need an entity tracks, by resource id.
type Store struct {
	needs map[string]*Need
}

// NewStore returns an empty needs store.
func NewStore() *Store {
	return &Store{needs: make(map[string]*Need)}
}

// Set registers or replaces a need definition.
func (s *Store) Set(n Need) {
	if n.Current == 0 && n.Initial != 0 {
		n.Current = n.Initial
	}
	cp := n
	s.needs[n.ID] = &cp
}

// Get returns the need for id, or nil.
func (s *Store) Get(id string) *Need {
	return s.needs[id]
}

// All returns the id -> need map. Callers must not mutate it.
func (s *Store) All() map[string]*Need {
	return s.needs
}

// Restore replaces the store's contents wholesale, bypassing Set's
// Current==0-implies-fresh fallback so a need legitimately depleted to 0
// round-trips exactly (snapshot restore).
func (s *Store) Restore(needs map[string]*Need) {
	s.needs = make(map[string]*Need, len(needs))
	for id, n := range needs {
		cp := *n
		s.needs[id] = &cp
	}
}

// Tick depletes every need by depletionRate*dt, clamped to [0,1], and
// applies emotionalImpact (scaled by how far under the critical threshold
// the need has fallen) to pad when a need is critical.
func (s *Store) Tick(pad *emotion.PAD, dt float64) {
	for _, n := range s.needs {
		n.Current = rng.Clamp(n.Current-n.DepletionRate*dt, 0, 1)
		if n.CriticalThreshold <= 0 || n.Current >= n.CriticalThreshold {
			continue
		}
		severity := (n.CriticalThreshold - n.Current) / n.CriticalThreshold
		if pad != nil {
			pad.Feel(emotion.PAD{
				Valence:   n.EmotionalImpact.Valence * severity,
				Arousal:   n.EmotionalImpact.Arousal * severity,
				Dominance: n.EmotionalImpact.Dominance * severity,
			})
		}
	}
}

// ============================================================================
// Resource fields
// ============================================================================

// SourceKind names a resource field's spatial shape.
type SourceKind int

const (
	Point SourceKind = iota
	Area
	Gradient
)

// Field is a world-level, spatially-located resource source.
type Field struct {
	ID                 string
	ResourceType       string
	Kind               SourceKind
	X, Y               float64
	Radius             float64
	FalloffExponent    float64 // gradient only
	RectW, RectH       float64 // area only, centered on X,Y
	Intensity          float64
	OriginalIntensity  float64
	RegenerationRate   float64
	DepletionRate      float64
}

// IntensityAt returns the field's resource intensity at (x,y), 0 if
// outside the field's extent.
func (f *Field) IntensityAt(x, y float64) float64 {
	d := math.Hypot(x-f.X, y-f.Y)
	switch f.Kind {
	case Point:
		if d >= f.Radius {
			return 0
		}
		return f.Intensity * math.Max(0, 1-d/f.Radius)
	case Area:
		if math.Abs(x-f.X) <= f.RectW/2 && math.Abs(y-f.Y) <= f.RectH/2 {
			return f.Intensity
		}
		return 0
	case Gradient:
		if d >= f.Radius {
			return 0
		}
		exp := f.FalloffExponent
		if exp == 0 {
			exp = 1
		}
		return f.Intensity * (1 - math.Pow(d/f.Radius, exp))
	default:
		return 0
	}
}

// Tick regenerates or depletes the field's intensity toward/away from its
// original value over dt seconds.
func (f *Field) Tick(dt float64) {
	if f.RegenerationRate > 0 && f.Intensity < f.OriginalIntensity {
		f.Intensity = math.Min(f.OriginalIntensity, f.Intensity+f.RegenerationRate*dt)
	}
	if f.DepletionRate > 0 {
		f.Intensity = math.Max(0, f.Intensity-f.DepletionRate*dt)
	}
}

// FieldSet owns the world's resource fields.
type FieldSet struct {
	fields map[string]*Field
}

// NewFieldSet returns an empty resource-field set.
func NewFieldSet() *FieldSet {
	return &FieldSet{fields: make(map[string]*Field)}
}

// Add registers f, recording its initial intensity as OriginalIntensity if
// unset.
func (fs *FieldSet) Add(f *Field) {
	if f.OriginalIntensity == 0 {
		f.OriginalIntensity = f.Intensity
	}
	fs.fields[f.ID] = f
}

// Get returns the field with id, or nil.
func (fs *FieldSet) Get(id string) *Field {
	return fs.fields[id]
}

// All returns every registered field. Callers must not mutate the map.
func (fs *FieldSet) All() map[string]*Field {
	return fs.fields
}

// Tick advances every field's regeneration/depletion.
func (fs *FieldSet) Tick(dt float64) {
	for _, f := range fs.fields {
		f.Tick(dt)
	}
}

// IntensityAt returns the strongest intensity of resourceType at (x,y)
// across all matching fields.
func (fs *FieldSet) IntensityAt(resourceType string, x, y float64) float64 {
	best := 0.0
	for _, f := range fs.fields {
		if f.ResourceType != resourceType {
			continue
		}
		if v := f.IntensityAt(x, y); v > best {
			best = v
		}
	}
	return best
}

// Consume finds the strongest matching field at (x,y), subtracts
// min(amount, its intensity) from it (bounded at 0), and returns the
// quantity actually consumed.
func (fs *FieldSet) Consume(resourceType string, x, y, amount float64) float64 {
	var strongest *Field
	best := -1.0
	for _, f := range fs.fields {
		if f.ResourceType != resourceType {
			continue
		}
		if v := f.IntensityAt(x, y); v > best {
			best = v
			strongest = f
		}
	}
	if strongest == nil || best <= 0 {
		return 0
	}
	consumed := math.Min(amount, strongest.Intensity)
	strongest.Intensity = math.Max(0, strongest.Intensity-consumed)
	return consumed
}
