// Package link implements the cognitive-link graph: directed weighted
// edges between entities, reinforcement and decay of edge strength, and
// BFS-ordered multi-hop signal propagation.
package link

// Edge is one directed cognitive link.
type Edge struct {
	Strength       float64 // [0,1]
	Bidirectional  bool
	LastReinforced float64 // world-time seconds
}

// Set is the outgoing-edge table for a single entity, keyed by peer id.
type Set struct {
	edges map[string]*Edge
}

// NewSet returns an empty outgoing edge set.
func NewSet() *Set {
	return &Set{edges: make(map[string]*Edge)}
}

// Get returns the edge to peer, or nil.
func (s *Set) Get(peer string) *Edge {
	return s.edges[peer]
}

// All returns the peer -> edge map. Callers must not mutate it.
func (s *Set) All() map[string]*Edge {
	return s.edges
}

// Len returns the number of outgoing edges.
func (s *Set) Len() int { return len(s.edges) }

// Reinforce bumps (or creates) the edge to peer by amount (default 0.1 if
// amount<=0) and resets LastReinforced to now.
func (s *Set) Reinforce(peer string, amount, now float64) *Edge {
	if amount <= 0 {
		amount = 0.1
	}
	e, ok := s.edges[peer]
	if !ok {
		e = &Edge{}
		s.edges[peer] = e
	}
	e.Strength = clamp01(e.Strength + amount)
	e.LastReinforced = now
	return e
}

// Remove deletes the edge to peer.
func (s *Set) Remove(peer string) {
	delete(s.edges, peer)
}

// DecayTick multiplies every edge's strength by (1-decayRate) and removes
// any edge that falls below 0.1, per spec.md §4.7. Returns the peer ids
// removed, in map-iteration order (the caller, if it needs determinism,
// should sort before emitting link.decay events).
func (s *Set) DecayTick(decayRate float64) []string {
	var removed []string
	for peer, e := range s.edges {
		e.Strength *= (1 - decayRate)
		if e.Strength < 0.1 {
			delete(s.edges, peer)
			removed = append(removed, peer)
		}
	}
	return removed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
