// Package climate implements the world-level emotional climate: a scalar
// quadruple that events push away from baseline and that drifts back to
// it every tick, radiating a small influence onto every entity's PAD.
package climate

import (
	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/rng"
)

// Climate is the world's grief/vitality/tension/harmony state, all in
// [0,1], with documented baseline {0, 0.5, 0, 0.5}.
type Climate struct {
	Grief    float64
	Vitality float64
	Tension  float64
	Harmony  float64
}

// Baseline is the documented rest state climate drifts toward.
var Baseline = Climate{Grief: 0, Vitality: 0.5, Tension: 0, Harmony: 0.5}

// New returns a Climate at baseline.
func New() *Climate {
	c := Baseline
	return &c
}

func (c *Climate) clamp() {
	c.Grief = rng.Clamp(c.Grief, 0, 1)
	c.Vitality = rng.Clamp(c.Vitality, 0, 1)
	c.Tension = rng.Clamp(c.Tension, 0, 1)
	c.Harmony = rng.Clamp(c.Harmony, 0, 1)
}

// RecordEntityDeath applies grief/vitality impact proportional to
// intensity (typically the departed entity's memory salience).
func (c *Climate) RecordEntityDeath(intensity float64) {
	c.Grief += intensity * 0.3
	c.Vitality -= intensity * 0.2
	c.clamp()
}

// RecordSuffering raises tension proportional to intensity.
func (c *Climate) RecordSuffering(intensity float64) {
	c.Tension += intensity * 0.1
	c.clamp()
}

// RecordHarmony raises harmony proportional to intensity.
func (c *Climate) RecordHarmony(intensity float64) {
	c.Harmony += intensity * 0.05
	c.clamp()
}

// DriftToBaseline pulls every axis toward Baseline at climateDecayRate*dt.
func (c *Climate) DriftToBaseline(climateDecayRate, dt float64) {
	rate := rng.Clamp(climateDecayRate*dt, 0, 1)
	c.Grief = rng.Lerp(c.Grief, Baseline.Grief, rate)
	c.Vitality = rng.Lerp(c.Vitality, Baseline.Vitality, rate)
	c.Tension = rng.Lerp(c.Tension, Baseline.Tension, rate)
	c.Harmony = rng.Lerp(c.Harmony, Baseline.Harmony, rate)
	c.clamp()
}

// Influence applies the climate's per-tick radiation onto an entity's PAD.
func (c *Climate) Influence(p *emotion.PAD, dt float64) {
	p.Valence -= c.Grief * 0.05 * dt
	p.Arousal += c.Tension * 0.03 * dt
	p.Valence += c.Harmony * 0.02 * dt
	p.Clamp()
}

// Describe maps the climate to a single label via threshold rules.
func (c *Climate) Describe() string {
	switch {
	case c.Grief > 0.6:
		return "grieving"
	case c.Tension > 0.6:
		return "tense"
	case c.Grief > 0.3 && c.Harmony < 0.3:
		return "melancholic"
	case c.Harmony > 0.6:
		return "harmonious"
	case c.Grief < 0.1 && c.Tension < 0.1:
		return "calm"
	default:
		return "neutral"
	}
}
