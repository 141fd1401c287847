// Package emotion implements the PAD (Pleasure/valence, Arousal,
// Dominance) model entities carry as their affective state.
package emotion

import "github.com/embergrove/murmur/internal/rng"

// PAD is the three-axis affect vector. Valence is signed, arousal and
// dominance are not.
type PAD struct {
	Valence   float64 // [-1, 1]
	Arousal   float64 // [0, 1]
	Dominance float64 // [0, 1]
}

// Clamp restricts every axis to its domain, in place.
func (p *PAD) Clamp() {
	p.Valence = rng.Clamp(p.Valence, -1, 1)
	p.Arousal = rng.Clamp(p.Arousal, 0, 1)
	p.Dominance = rng.Clamp(p.Dominance, 0, 1)
}

// Feel adds delta to the current state and clamps.
func (p *PAD) Feel(delta PAD) {
	p.Valence += delta.Valence
	p.Arousal += delta.Arousal
	p.Dominance += delta.Dominance
	p.Clamp()
}

// Resonate linearly interpolates self toward other by strength (clamped to
// [0,1] before use), per axis, then clamps the result.
func (p *PAD) Resonate(other PAD, strength float64) {
	strength = rng.Clamp(strength, 0, 1)
	p.Valence = rng.Lerp(p.Valence, other.Valence, strength)
	p.Arousal = rng.Lerp(p.Arousal, other.Arousal, strength)
	p.Dominance = rng.Lerp(p.Dominance, other.Dominance, strength)
	p.Clamp()
}

// DriftToBaseline interpolates toward baseline at the given rate (already
// multiplied by dt by the caller), clamped to [0,1] as an interpolation
// factor.
func (p *PAD) DriftToBaseline(baseline PAD, rate float64) {
	rate = rng.Clamp(rate, 0, 1)
	p.Valence = rng.Lerp(p.Valence, baseline.Valence, rate)
	p.Arousal = rng.Lerp(p.Arousal, baseline.Arousal, rate)
	p.Dominance = rng.Lerp(p.Dominance, baseline.Dominance, rate)
	p.Clamp()
}

// Baselines are the built-in named PAD presets a material may reference by
// name in ontology.emotionBaseline or emotion.base_state.
var Baselines = map[string]PAD{
	"neutral": {Valence: 0, Arousal: 0.3, Dominance: 0.5},
	"happy":   {Valence: 0.8, Arousal: 0.6, Dominance: 0.6},
	"sad":     {Valence: -0.6, Arousal: 0.2, Dominance: 0.3},
	"angry":   {Valence: -0.5, Arousal: 0.8, Dominance: 0.7},
	"curious": {Valence: 0.4, Arousal: 0.6, Dominance: 0.5},
	"anxious": {Valence: -0.4, Arousal: 0.7, Dominance: 0.2},
	"calm":    {Valence: 0.3, Arousal: 0.1, Dominance: 0.5},
	"fearful": {Valence: -0.7, Arousal: 0.8, Dominance: 0.1},
}

// Baseline looks up a named baseline, falling back to "neutral" for an
// unrecognized name.
func Baseline(name string) PAD {
	if p, ok := Baselines[name]; ok {
		return p
	}
	return Baselines["neutral"]
}
