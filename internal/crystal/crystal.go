// Package crystal implements the memory crystallizer: it groups memory
// events by (subject, type) and promotes recurrent groups into long-term
// Crystals once they cross a frequency/strength threshold.
//
// Distinct from internal/lexicon's transcript-driven term crystallizer —
// spec.md treats the two as separate components with no shared state.
//
// Adapted from a consolidation pass that clustered experiences into
// schemas with frequency-gated promotion and exemplar preservation; this
// generalizes the same shape to spec.md's (subject,type) grouping.
package crystal

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Crystal is a consolidated summary of a recurrent (subject,type) group.
type Crystal struct {
	ID             string
	Pattern        string
	Subject        string
	Type           string
	Strength       float64 // (0,1]
	FirstSeen      float64
	LastReinforced float64
	Count          int
	Essence        string
	Metadata       map[string]any
}

// Config parameterizes promotion thresholds and capacity.
type Config struct {
	MinOccurrences int
	MinStrength    float64
	MaxCrystals    int
}

// DefaultConfig returns spec.md §4.9's documented defaults.
func DefaultConfig() Config {
	return Config{MinOccurrences: 3, MinStrength: 0.1, MaxCrystals: 200}
}

// Event is the minimal memory-event shape the crystallizer groups,
// decoupled from internal/memorylog.Event so this package has no
// dependency on it; internal/world adapts its own events into this shape.
type Event struct {
	Subject  string
	Type     string
	Salience float64
	Metadata map[string]any
}

// Crystallizer groups events by (subject,type) and promotes/reinforces
// Crystals accordingly.
type Crystallizer struct {
	cfg      Config
	crystals map[string]*Crystal // keyed by subject+"\x00"+type
	nextID   int
}

// New returns a Crystallizer governed by cfg.
func New(cfg Config) *Crystallizer {
	return &Crystallizer{cfg: cfg, crystals: make(map[string]*Crystal)}
}

func groupKey(subject, typ string) string {
	return subject + "\x00" + typ
}

// Crystallize folds a batch of events, already grouped in the caller's
// flat memory log by (subject,type), into the crystal store. The caller
// supplies the full set of matching events for one (subject,type) group
// at a time — the crystallizer does not retain raw events itself, only
// the derived Crystal.
func (c *Crystallizer) Crystallize(subject, typ string, events []Event, now float64) *Crystal {
	if len(events) < c.cfg.MinOccurrences {
		return nil
	}
	meanSalience := meanOf(salienceValues(events))
	strength := meanSalience * math.Log(1+float64(len(events)))
	if strength < c.cfg.MinStrength {
		return nil
	}
	strength = math.Min(strength, 1)

	key := groupKey(subject, typ)
	existing, ok := c.crystals[key]
	if !ok {
		c.nextID++
		existing = &Crystal{
			ID:        fmt.Sprintf("crystal-%d", c.nextID),
			Subject:   subject,
			Type:      typ,
			FirstSeen: now,
		}
		c.crystals[key] = existing
	}
	existing.Count = len(events)
	existing.Strength = strength
	existing.LastReinforced = now
	existing.Pattern = patternName(typ, len(events))
	existing.Metadata = aggregateMetadata(events)

	c.evictWeakestIfOverCapacity()
	return existing
}

func patternName(typ string, count int) string {
	switch {
	case count >= 10:
		return "frequent_" + typ
	case count >= 5:
		return "repeated_" + typ
	default:
		return "occasional_" + typ
	}
}

func salienceValues(events []Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.Salience
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// aggregateMetadata combines each metadata key across events: numeric
// values are averaged (via gonum/stat.Mean), everything else keeps the
// most common value.
func aggregateMetadata(events []Event) map[string]any {
	numeric := make(map[string][]float64)
	counts := make(map[string]map[string]int)

	for _, e := range events {
		for k, v := range e.Metadata {
			switch n := v.(type) {
			case float64:
				numeric[k] = append(numeric[k], n)
			case int:
				numeric[k] = append(numeric[k], float64(n))
			default:
				s := fmt.Sprintf("%v", v)
				if counts[k] == nil {
					counts[k] = make(map[string]int)
				}
				counts[k][s]++
			}
		}
	}

	out := make(map[string]any)
	for k, vals := range numeric {
		out[k] = stat.Mean(vals, nil)
	}
	for k, freq := range counts {
		best, bestCount := "", -1
		keys := make([]string, 0, len(freq))
		for s := range freq {
			keys = append(keys, s)
		}
		sort.Strings(keys)
		for _, s := range keys {
			if freq[s] > bestCount {
				best, bestCount = s, freq[s]
			}
		}
		out[k] = best
	}
	return out
}

func (c *Crystallizer) evictWeakestIfOverCapacity() {
	if c.cfg.MaxCrystals <= 0 || len(c.crystals) <= c.cfg.MaxCrystals {
		return
	}
	var weakestKey string
	weakest := math.Inf(1)
	for k, cr := range c.crystals {
		if cr.Strength < weakest {
			weakest = cr.Strength
			weakestKey = k
		}
	}
	if weakestKey != "" {
		delete(c.crystals, weakestKey)
	}
}

// All returns every crystal. Callers must not mutate the returned slice's
// pointees.
func (c *Crystallizer) All() []*Crystal {
	out := make([]*Crystal, 0, len(c.crystals))
	for _, cr := range c.crystals {
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find looks up the crystal for (subject,type), if one has formed.
func (c *Crystallizer) Find(subject, typ string) (*Crystal, bool) {
	cr, ok := c.crystals[groupKey(subject, typ)]
	return cr, ok
}

// Len returns the number of crystals currently held.
func (c *Crystallizer) Len() int { return len(c.crystals) }

// Restore replaces the crystal store wholesale (snapshot restore).
func (c *Crystallizer) Restore(crystals []*Crystal) {
	c.crystals = make(map[string]*Crystal, len(crystals))
	for _, cr := range crystals {
		c.crystals[groupKey(cr.Subject, cr.Type)] = cr
	}
}
