package memorylog

// Ring is a bounded FIFO of memory events. When full, Add drops the entry
// with the lowest salience (ties broken by oldest) rather than strictly
// the oldest, per spec.md §4.3.
type Ring struct {
	cap    int
	events []Event
}

// NewRing returns a Ring with the given capacity (default 500 if cap<=0).
func NewRing(cap int) *Ring {
	if cap <= 0 {
		cap = 500
	}
	return &Ring{cap: cap}
}

// Add appends an event, evicting the lowest-salience (oldest on tie) entry
// if the ring is at capacity. Returns true if an eviction occurred
// (spec.md §7: Overflow, not an error, reported by the caller if desired).
func (r *Ring) Add(e Event) (evicted bool) {
	if len(r.events) < r.cap {
		r.events = append(r.events, e)
		return false
	}
	worst := 0
	for i := 1; i < len(r.events); i++ {
		if r.events[i].Salience < r.events[worst].Salience {
			worst = i
		}
	}
	r.events = append(r.events[:worst], r.events[worst+1:]...)
	r.events = append(r.events, e)
	return true
}

// Len returns the number of stored events.
func (r *Ring) Len() int { return len(r.events) }

// Cap returns the configured capacity.
func (r *Ring) Cap() int { return r.cap }

// All returns every stored event, oldest first. The returned slice must
// not be mutated by the caller.
func (r *Ring) All() []Event { return r.events }

// Recall returns matching events, newest-first. A nil filter matches
// everything.
func (r *Ring) Recall(filter func(Event) bool) []Event {
	var out []Event
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	return out
}
