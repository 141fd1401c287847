package crystal

import "testing"

func TestCrystallizeBelowMinOccurrencesDoesNothing(t *testing.T) {
	c := New(DefaultConfig())
	events := []Event{{Subject: "peer-1", Type: "interaction", Salience: 0.5}}
	if got := c.Crystallize("peer-1", "interaction", events, 10); got != nil {
		t.Fatalf("expected nil below threshold, got %+v", got)
	}
}

func TestCrystallizePromotesAndNamesPattern(t *testing.T) {
	c := New(DefaultConfig())
	events := make([]Event, 3)
	for i := range events {
		events[i] = Event{Subject: "peer-1", Type: "interaction", Salience: 0.8}
	}
	cr := c.Crystallize("peer-1", "interaction", events, 10)
	if cr == nil {
		t.Fatal("expected crystal to form")
	}
	if cr.Pattern != "occasional_interaction" {
		t.Errorf("pattern = %q, want occasional_interaction", cr.Pattern)
	}
}

func TestCrystallizeNamesByCount(t *testing.T) {
	c := New(DefaultConfig())
	mk := func(n int) []Event {
		out := make([]Event, n)
		for i := range out {
			out[i] = Event{Subject: "s", Type: "fact", Salience: 0.9}
		}
		return out
	}
	if cr := c.Crystallize("s", "fact", mk(5), 0); cr.Pattern != "repeated_fact" {
		t.Errorf("5 events: pattern = %q, want repeated_fact", cr.Pattern)
	}
	if cr := c.Crystallize("s", "fact", mk(10), 0); cr.Pattern != "frequent_fact" {
		t.Errorf("10 events: pattern = %q, want frequent_fact", cr.Pattern)
	}
}

func TestReinforcementUpdatesExistingCrystal(t *testing.T) {
	c := New(DefaultConfig())
	mk := func(n int) []Event {
		out := make([]Event, n)
		for i := range out {
			out[i] = Event{Subject: "s", Type: "fact", Salience: 0.9}
		}
		return out
	}
	first := c.Crystallize("s", "fact", mk(3), 0)
	second := c.Crystallize("s", "fact", mk(6), 5)

	if first.ID != second.ID {
		t.Error("expected reinforcement to update the same crystal, not create a new one")
	}
	if c.Len() != 1 {
		t.Errorf("expected exactly one crystal, got %d", c.Len())
	}
}

func TestMetadataAggregation(t *testing.T) {
	c := New(DefaultConfig())
	events := []Event{
		{Subject: "s", Type: "fact", Salience: 0.5, Metadata: map[string]any{"mood": "happy", "intensity": 0.2}},
		{Subject: "s", Type: "fact", Salience: 0.5, Metadata: map[string]any{"mood": "happy", "intensity": 0.4}},
		{Subject: "s", Type: "fact", Salience: 0.5, Metadata: map[string]any{"mood": "sad", "intensity": 0.6}},
	}
	cr := c.Crystallize("s", "fact", events, 0)
	if cr.Metadata["mood"] != "happy" {
		t.Errorf("mood = %v, want happy (most common)", cr.Metadata["mood"])
	}
	if v, ok := cr.Metadata["intensity"].(float64); !ok || v < 0.39 || v > 0.41 {
		t.Errorf("intensity = %v, want ~0.4", cr.Metadata["intensity"])
	}
}

func TestEvictsWeakestOverCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCrystals = 1
	c := New(cfg)
	mk := func(n int, salience float64) []Event {
		out := make([]Event, n)
		for i := range out {
			out[i] = Event{Salience: salience}
		}
		return out
	}
	c.Crystallize("weak", "fact", mk(3, 0.11), 0)
	c.Crystallize("strong", "fact", mk(3, 0.99), 0)

	if c.Len() != 1 {
		t.Fatalf("expected capacity enforcement, got %d crystals", c.Len())
	}
	if _, ok := c.Find("strong", "fact"); !ok {
		t.Error("expected the strong crystal to survive eviction")
	}
}
