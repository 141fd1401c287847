package lexicon

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gonum.org/v1/gonum/stat"
)

// Entry is one crystallized lexicon term.
type Entry struct {
	Term          string
	Meaning       string
	Origin        string // "crystallized" for terms the crystallizer promoted
	Category      string // greeting | question | expression | statement
	UsageCount    int
	FirstSeen     float64
	LastUsed      float64
	RelatedTerms  []string
	Weight        float64 // [0,1]
	DecayRate     float64
	EmotionContext *float64 // running-mean valence across contributing utterances, if any carried emotion
}

// Lexicon is the map of normalized term -> Entry.
type Lexicon struct {
	entries map[string]*Entry
}

// New returns an empty lexicon.
func New() *Lexicon {
	return &Lexicon{entries: make(map[string]*Entry)}
}

// Get returns the entry for term, or nil.
func (l *Lexicon) Get(term string) *Entry {
	return l.entries[term]
}

// All returns every entry, sorted by term. Callers must not mutate the
// returned slice's pointees.
func (l *Lexicon) All() []*Entry {
	out := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// Len returns the number of entries.
func (l *Lexicon) Len() int { return len(l.entries) }

// Restore replaces the lexicon contents wholesale (snapshot restore).
func (l *Lexicon) Restore(entries []*Entry) {
	l.entries = make(map[string]*Entry, len(entries))
	for _, e := range entries {
		l.entries[e.Term] = e
	}
}

// Decay applies idle decay: any entry untouched for longer than
// idleThreshold has its weight multiplied by (1-decayRate); entries that
// fall below weight 0.01 are removed.
func (l *Lexicon) Decay(now, idleThreshold float64) {
	for term, e := range l.entries {
		if now-e.LastUsed <= idleThreshold {
			continue
		}
		rate := e.DecayRate
		if rate <= 0 {
			rate = 0.05
		}
		e.Weight *= (1 - rate)
		if e.Weight < 0.01 {
			delete(l.entries, term)
		}
	}
}

type scoredTerm struct {
	term string
	dist int
}

// updateRelatedTerms populates term's RelatedTerms with the nearest
// existing lexicon entries by edit distance, capped at maxRelated.
func (l *Lexicon) updateRelatedTerms(term string, maxRelated int) {
	var candidates []scoredTerm
	for other := range l.entries {
		if other == term {
			continue
		}
		candidates = append(candidates, scoredTerm{other, levenshtein.ComputeDistance(term, other)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if len(candidates) > maxRelated {
		candidates = candidates[:maxRelated]
	}
	related := make([]string, len(candidates))
	for i, c := range candidates {
		related[i] = c.term
	}
	if e := l.entries[term]; e != nil {
		e.RelatedTerms = related
	}
}

// runningMeanValence computes the mean valence across utterances that
// carried an emotion, or nil if none did.
func runningMeanValence(utterances []Utterance) *float64 {
	var vals []float64
	for _, u := range utterances {
		if u.Emotion != nil {
			vals = append(vals, u.Emotion.Valence)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	m := stat.Mean(vals, nil)
	return &m
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
