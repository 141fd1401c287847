package link

import "testing"

func TestReinforceCreatesAndBumps(t *testing.T) {
	s := NewSet()
	s.Reinforce("peer", 0.1, 1)
	s.Reinforce("peer", 0.1, 2)

	e := s.Get("peer")
	if e == nil {
		t.Fatal("expected edge to exist")
	}
	if e.Strength < 0.19 || e.Strength > 0.21 {
		t.Errorf("strength = %v, want ~0.2", e.Strength)
	}
	if e.LastReinforced != 2 {
		t.Errorf("LastReinforced = %v, want 2", e.LastReinforced)
	}
}

func TestDecayPrunesBelowThreshold(t *testing.T) {
	s := NewSet()
	s.Reinforce("weak", 0.15, 0)
	s.Reinforce("strong", 0.9, 0)

	removed := s.DecayTick(0.5)

	if s.Get("weak") != nil {
		t.Error("expected weak edge to be pruned")
	}
	if s.Get("strong") == nil {
		t.Error("expected strong edge to survive")
	}
	found := false
	for _, r := range removed {
		if r == "weak" {
			found = true
		}
	}
	if !found {
		t.Error("expected weak to be reported removed")
	}
}

func TestPropagateStopsAtMinStrength(t *testing.T) {
	a, b, c := NewSet(), NewSet(), NewSet()
	a.Reinforce("b", 0.9, 0) // strong edge a->b
	b.Reinforce("c", 0.05, 0) // weak edge b->c, will fall below threshold

	neighbors := func(id string) *Set {
		switch id {
		case "a":
			return a
		case "b":
			return b
		case "c":
			return c
		}
		return nil
	}

	var delivered []string
	deliver := func(receiver string, sig Signal, strength float64) {
		delivered = append(delivered, receiver)
	}

	Propagate(Signal{ID: "s1", Source: "a", Strength: 1}, 0.1, 0.05, 5, neighbors, deliver)

	if len(delivered) != 1 || delivered[0] != "b" {
		t.Fatalf("expected only b to receive, got %v", delivered)
	}
}

func TestPropagateRespectsMaxHops(t *testing.T) {
	a, b, c := NewSet(), NewSet(), NewSet()
	a.Reinforce("b", 1.0, 0)
	b.Reinforce("c", 1.0, 0)

	neighbors := func(id string) *Set {
		switch id {
		case "a":
			return a
		case "b":
			return b
		case "c":
			return c
		}
		return nil
	}
	var delivered []string
	Propagate(Signal{ID: "s1", Source: "a", Strength: 1}, 0, 0, 1, neighbors, func(r string, s Signal, st float64) {
		delivered = append(delivered, r)
	})
	if len(delivered) != 1 || delivered[0] != "b" {
		t.Fatalf("expected propagation to stop after 1 hop, got %v", delivered)
	}
}

func TestPropagateDedupesPerTraversal(t *testing.T) {
	a, b, c := NewSet(), NewSet(), NewSet()
	a.Reinforce("b", 1.0, 0)
	a.Reinforce("c", 1.0, 0)
	b.Reinforce("c", 1.0, 0)

	neighbors := func(id string) *Set {
		switch id {
		case "a":
			return a
		case "b":
			return b
		case "c":
			return c
		}
		return nil
	}
	count := 0
	Propagate(Signal{ID: "s1", Source: "a", Strength: 1}, 0, 0, 5, neighbors, func(r string, s Signal, st float64) {
		if r == "c" {
			count++
		}
	})
	if count != 1 {
		t.Fatalf("expected c delivered exactly once, got %d", count)
	}
}
