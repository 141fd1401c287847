// Package field implements transient spatial effects: a field has a
// lifetime, a radius, and a payload applied to every entity it overlaps
// while it remains alive.
package field

import "math"

// Field is a transient spatial effect.
type Field struct {
	ID                string
	MaterialID        string
	X, Y              float64
	Radius            float64
	RemainingLifetime float64 // seconds; +Inf for fields without a duration
	Payload           map[string]any
}

// Infinite is the remaining-lifetime sentinel for fields with no
// documented duration (spec.md §4.1: "duration = infinite for fields
// without duration").
var Infinite = math.Inf(1)

// Tick decrements the remaining lifetime by dt. Returns true if the field
// has expired as a result.
func (f *Field) Tick(dt float64) (expired bool) {
	if math.IsInf(f.RemainingLifetime, 1) {
		return false
	}
	f.RemainingLifetime -= dt
	return f.RemainingLifetime <= 0
}

// Affects reports whether (x,y) is within the field's radius.
func (f *Field) Affects(x, y float64) bool {
	dx, dy := x-f.X, y-f.Y
	return dx*dx+dy*dy <= f.Radius*f.Radius
}

// Set owns the world's active fields, in insertion order for determinism.
type Set struct {
	order []string
	byID  map[string]*Field
}

// NewSet returns an empty field set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*Field)}
}

// Add registers f.
func (s *Set) Add(f *Field) {
	if _, exists := s.byID[f.ID]; !exists {
		s.order = append(s.order, f.ID)
	}
	s.byID[f.ID] = f
}

// Get returns the field with id, or nil.
func (s *Set) Get(id string) *Field {
	return s.byID[id]
}

// All returns every field in insertion order.
func (s *Set) All() []*Field {
	out := make([]*Field, 0, len(s.order))
	for _, id := range s.order {
		if f, ok := s.byID[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Tick advances every field and removes those that expire, in insertion
// order, per spec.md §4.1 step 3 ("after the loop, remove expired
// fields").
func (s *Set) Tick(dt float64) (expiredIDs []string) {
	for _, f := range s.All() {
		if f.Tick(dt) {
			expiredIDs = append(expiredIDs, f.ID)
		}
	}
	for _, id := range expiredIDs {
		s.remove(id)
	}
	return expiredIDs
}

// Remove deletes the field with id, if present.
func (s *Set) Remove(id string) {
	s.remove(id)
}

func (s *Set) remove(id string) {
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of active fields.
func (s *Set) Len() int { return len(s.byID) }

// Restore replaces the field set wholesale (snapshot restore).
func (s *Set) Restore(fields []*Field) {
	s.order = nil
	s.byID = make(map[string]*Field, len(fields))
	for _, f := range fields {
		s.Add(f)
	}
}
