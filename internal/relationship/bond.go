// Package relationship implements the per-pair bond store and its
// time-based decay curves.
package relationship

import "math"

// Bond is the state tracked for one peer relationship.
type Bond struct {
	Trust            float64 // [-1, 1]
	Familiarity      float64 // [0, 1]
	LastInteraction  float64 // world-time seconds
	InteractionCount int
}

// Curve names the decay shape applied between interactions.
type Curve int

const (
	Linear Curve = iota
	Exponential
	Logarithmic
	Stepped
)

// Step is one piece of a Stepped curve: at t >= At, decay rate becomes Rate.
type Step struct {
	At   float64
	Rate float64
}

// Config parameterizes decay for a Store.
type Config struct {
	Curve               Curve
	Rate                float64 // base decay rate
	Steps               []Step  // used when Curve == Stepped, ascending by At
	TrustDecayMultiplier float64 // trust decays slower by this factor
	GracePeriod         float64 // seconds after lastInteraction with no decay
	MaxDecayPerTick     float64
	MinThreshold        float64 // prune when both trust and familiarity fall below this
}

// DefaultConfig returns spec.md §4.6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Curve:                Linear,
		Rate:                 0.01,
		TrustDecayMultiplier: 0.5,
		GracePeriod:          0,
		MaxDecayPerTick:      0.1,
		MinThreshold:         0.05,
	}
}

// decayAmount returns the raw decay for an elapsed window t, before the
// trust multiplier and per-tick cap are applied.
func (c Config) decayAmount(t float64) float64 {
	switch c.Curve {
	case Linear:
		return c.Rate * t
	case Exponential:
		return c.Rate * t * t / 100
	case Logarithmic:
		return c.Rate * math.Log(1+t)
	case Stepped:
		rate := c.Rate
		for _, s := range c.Steps {
			if t >= s.At {
				rate = s.Rate
			}
		}
		return rate * t
	default:
		return c.Rate * t
	}
}

// Store holds bonds for one entity's peers.
type Store struct {
	cfg   Config
	bonds map[string]*Bond
}

// NewStore returns an empty Store governed by cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg, bonds: make(map[string]*Bond)}
}

// Get returns the bond for peer, or nil if none exists.
func (s *Store) Get(peer string) *Bond {
	return s.bonds[peer]
}

// All returns the full peer -> bond map. Callers must not mutate it.
func (s *Store) All() map[string]*Bond {
	return s.bonds
}

// Reinforce records an interaction with peer, raising trust and
// familiarity (reinforcement only ever increases these — spec.md §3.3).
func (s *Store) Reinforce(peer string, trustDelta, familiarityDelta, now float64) *Bond {
	b, ok := s.bonds[peer]
	if !ok {
		b = &Bond{}
		s.bonds[peer] = b
	}
	if trustDelta > 0 {
		b.Trust = clampSigned(b.Trust + trustDelta)
	}
	if familiarityDelta > 0 {
		b.Familiarity = clampUnsigned(b.Familiarity + familiarityDelta)
	}
	b.LastInteraction = now
	b.InteractionCount++
	return b
}

// DecayTick applies one tick's worth of decay (dt seconds elapsed at time
// now) to every bond, then prunes bonds below threshold on both axes.
func (s *Store) DecayTick(now, dt float64) {
	for peer, b := range s.bonds {
		elapsedSinceInteraction := now - b.LastInteraction
		if elapsedSinceInteraction < s.cfg.GracePeriod {
			continue
		}
		raw := s.cfg.decayAmount(dt)
		capped := math.Min(raw, s.cfg.MaxDecayPerTick)

		b.Familiarity = clampUnsigned(b.Familiarity - capped)
		b.Trust = clampSigned(b.Trust - capped*s.cfg.TrustDecayMultiplier)

		if b.Trust < s.cfg.MinThreshold && b.Familiarity < s.cfg.MinThreshold {
			delete(s.bonds, peer)
		}
	}
}

// EstimateTimeUntilPruning inverts the decay curve for the lower of the
// bond's two remaining components, returning the world-time seconds until
// it crosses MinThreshold assuming no further interaction. Returns 0 if
// the lower component is already at or below MinThreshold, and +Inf if
// the peer is unknown or the decay rate is zero.
func (s *Store) EstimateTimeUntilPruning(peer string) float64 {
	b, ok := s.bonds[peer]
	if !ok {
		return math.Inf(1)
	}
	remaining := math.Min(b.Trust, b.Familiarity)
	toLose := remaining - s.cfg.MinThreshold
	if toLose <= 0 {
		return 0
	}
	switch s.cfg.Curve {
	case Linear:
		if s.cfg.Rate == 0 {
			return math.Inf(1)
		}
		return toLose / s.cfg.Rate
	case Exponential:
		if s.cfg.Rate == 0 {
			return math.Inf(1)
		}
		return math.Sqrt(toLose * 100 / s.cfg.Rate)
	case Logarithmic:
		if s.cfg.Rate == 0 {
			return math.Inf(1)
		}
		return math.Exp(toLose/s.cfg.Rate) - 1
	default:
		if s.cfg.Rate == 0 {
			return math.Inf(1)
		}
		return toLose / s.cfg.Rate
	}
}

// Len returns the number of tracked peers.
func (s *Store) Len() int { return len(s.bonds) }

func clampUnsigned(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
