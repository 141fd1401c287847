// Package lexicon implements the transcript, the lexicon of crystallized
// terms, and the crystallizer that promotes recurring transcript phrases
// into lexicon entries.
//
// Distinct from internal/crystal's memory crystallizer — spec.md treats
// the two as separate components with no shared state.
package lexicon

import "github.com/embergrove/murmur/internal/emotion"

// Utterance is one recorded line of speech.
type Utterance struct {
	ID        string
	Speaker   string
	Listener  string // optional
	Text      string
	Timestamp float64
	Emotion   *emotion.PAD // optional
}

// Transcript is a circular buffer of utterances, default capacity 1000.
type Transcript struct {
	cap   int
	items []Utterance
}

// NewTranscript returns a Transcript with the given capacity (default
// 1000 if cap<=0).
func NewTranscript(cap int) *Transcript {
	if cap <= 0 {
		cap = 1000
	}
	return &Transcript{cap: cap}
}

// Record appends an utterance, dropping the oldest if at capacity.
func (t *Transcript) Record(u Utterance) {
	if len(t.items) >= t.cap {
		t.items = t.items[1:]
	}
	t.items = append(t.items, u)
}

// Recent returns the newest n utterances, oldest-first within that window.
func (t *Transcript) Recent(n int) []Utterance {
	if n <= 0 || n > len(t.items) {
		n = len(t.items)
	}
	return append([]Utterance(nil), t.items[len(t.items)-n:]...)
}

// BySpeaker returns every utterance spoken by speaker, oldest-first.
func (t *Transcript) BySpeaker(speaker string) []Utterance {
	var out []Utterance
	for _, u := range t.items {
		if u.Speaker == speaker {
			out = append(out, u)
		}
	}
	return out
}

// ByConversation returns every utterance between a and b in either
// direction, oldest-first.
func (t *Transcript) ByConversation(a, b string) []Utterance {
	var out []Utterance
	for _, u := range t.items {
		if (u.Speaker == a && u.Listener == b) || (u.Speaker == b && u.Listener == a) {
			out = append(out, u)
		}
	}
	return out
}

// Since returns every utterance recorded at or after ts, oldest-first.
func (t *Transcript) Since(ts float64) []Utterance {
	var out []Utterance
	for _, u := range t.items {
		if u.Timestamp >= ts {
			out = append(out, u)
		}
	}
	return out
}

// All returns every utterance currently retained, oldest-first. Callers
// must not mutate the returned slice.
func (t *Transcript) All() []Utterance {
	return t.items
}

// Restore replaces the transcript contents wholesale (snapshot restore).
func (t *Transcript) Restore(items []Utterance) {
	t.items = append([]Utterance(nil), items...)
}

// Len returns the number of retained utterances.
func (t *Transcript) Len() int { return len(t.items) }
