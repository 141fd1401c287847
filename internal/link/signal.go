package link

import "sort"

// SignalType enumerates what a CognitiveSignal carries.
type SignalType string

const (
	MemorySignal SignalType = "memory"
	EmotionSignal SignalType = "emotion"
	IntentSignal  SignalType = "intent"
	CustomSignal  SignalType = "custom"
)

// Signal is a unit of cognition propagated through the link graph.
type Signal struct {
	ID        string
	Type      SignalType
	Source    string
	Timestamp float64
	Payload   any
	Strength  float64
}

// NeighborFunc returns the outgoing edge set owned by id, or nil if id has
// none.
type NeighborFunc func(id string) *Set

// DeliverFunc is invoked once per (signal, receiver) pair that the
// propagation reaches, with the strength the signal arrived with.
type DeliverFunc func(receiver string, s Signal, arrivedStrength float64)

// Propagate walks the link graph breadth-first from s.Source, attenuating
// strength at each hop by the traversed edge's weight and decayRate.
// Traversal stops along a branch once arrived strength drops below
// minStrength or hops reaches maxHops. Each receiver is delivered to at
// most once per call (dedup per traversal, keyed by receiver since a
// single Signal.ID is fixed for the whole call).
func Propagate(s Signal, decayRate, minStrength float64, maxHops int, neighbors NeighborFunc, deliver DeliverFunc) {
	type queued struct {
		id       string
		strength float64
		hops     int
	}

	visited := map[string]bool{s.Source: true}
	queue := []queued{{id: s.Source, strength: s.Strength, hops: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.hops >= maxHops {
			continue
		}
		set := neighbors(cur.id)
		if set == nil {
			continue
		}
		for _, peer := range sortedPeers(set) {
			edge := set.Get(peer)
			arrived := cur.strength * edge.Strength * (1 - decayRate)
			if arrived < minStrength {
				continue
			}
			if visited[peer] {
				continue
			}
			visited[peer] = true
			deliver(peer, s, arrived)
			queue = append(queue, queued{id: peer, strength: arrived, hops: cur.hops + 1})
		}
	}
}

func sortedPeers(s *Set) []string {
	peers := make([]string, 0, s.Len())
	for p := range s.All() {
		peers = append(peers, p)
	}
	sort.Strings(peers)
	return peers
}
