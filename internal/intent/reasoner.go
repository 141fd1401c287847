package intent

import (
	"strings"

	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/rng"
)

// MemoryRef is the minimal memory-event shape the reasoner needs to
// compute memory support, decoupled from internal/memorylog's richer
// Event so this package has no dependency on it.
type MemoryRef struct {
	Subject string
}

// RelationshipRef is the minimal bond shape the reasoner needs.
type RelationshipRef struct {
	Trust       float64
	Familiarity float64
}

// CrystalRef is the minimal memory-crystal shape the reasoner needs.
type CrystalRef struct {
	Subject  string
	Type     string
	Strength float64
}

// ReasonContext is the evidence the Reasoner blends into a confidence
// score for the current intent.
type ReasonContext struct {
	Emotion       *emotion.PAD
	Memories      []MemoryRef
	Relationships map[string]RelationshipRef // peer id -> bond
	Crystals      []CrystalRef
	CurrentTime   float64
}

// ReasonedIntent augments an Intent with the reasoner's verdict.
type ReasonedIntent struct {
	Intent
	Confidence float64
	Relevance  float64
	Reasoning  []string
}

// Config parameterizes the Reasoner's blending weights and thresholds.
type Config struct {
	EmotionWeight        float64
	ConfidenceThreshold  float64
	ReevaluationInterval float64
}

// DefaultConfig returns spec.md §4.5's documented defaults.
func DefaultConfig() Config {
	return Config{
		EmotionWeight:        0.6,
		ConfidenceThreshold:  0.3,
		ReevaluationInterval: 5,
	}
}

// Reasoner scores intents against a ReasonContext.
type Reasoner struct {
	cfg Config
}

// NewReasoner returns a Reasoner governed by cfg.
func NewReasoner(cfg Config) *Reasoner {
	return &Reasoner{cfg: cfg}
}

// Reason blends the intent's baseline motivation with emotion, memory,
// crystal, and relationship support into a ReasonedIntent.
func (r *Reasoner) Reason(i Intent, ctx ReasonContext) ReasonedIntent {
	var reasons []string
	confidence := i.Motivation
	reasons = append(reasons, "baseline=motivation")

	if ctx.Emotion != nil {
		influence := r.emotionInfluence(i.Goal, *ctx.Emotion)
		confidence += influence * r.cfg.EmotionWeight
		reasons = append(reasons, "emotion influence applied")
	}

	if support := memorySupport(i.Goal, i.Target, ctx.Memories); support > 0 {
		confidence += support * 0.2
		reasons = append(reasons, "memory support applied")
	}

	if support, ok := crystalSupport(i.Goal, i.Target, ctx.Crystals); ok {
		confidence += support * 0.2
		reasons = append(reasons, "crystal support applied")
	}

	if i.Target != "" {
		if bond, ok := ctx.Relationships[i.Target]; ok {
			confidence += relationshipSupport(i.Goal, bond) * 0.2
			reasons = append(reasons, "relationship support applied")
		}
	}

	confidence = rng.Clamp(confidence, 0, 1)
	relevance := rng.Clamp(i.Motivation*0.5+confidence*0.5, 0, 1)

	return ReasonedIntent{
		Intent:     i,
		Confidence: confidence,
		Relevance:  relevance,
		Reasoning:  reasons,
	}
}

// ShouldAbandon re-scores the intent and reports whether its confidence
// has fallen below the configured threshold. The caller is responsible
// for only invoking this once ReevaluationInterval seconds have elapsed
// since the intent was created or last evaluated.
func (r *Reasoner) ShouldAbandon(i Intent, ctx ReasonContext) bool {
	reasoned := r.Reason(i, ctx)
	return reasoned.Confidence < r.cfg.ConfidenceThreshold
}

// ReevaluationInterval exposes the configured interval for callers driving
// the "re-evaluate after N seconds" timer.
func (r *Reasoner) ReevaluationInterval() float64 {
	return r.cfg.ReevaluationInterval
}

func (r *Reasoner) emotionInfluence(goal string, e emotion.PAD) float64 {
	switch strings.ToLower(goal) {
	case "bond":
		return e.Valence
	case "explore":
		if e.Arousal > 0.5 && e.Valence > 0 {
			return e.Arousal
		}
		return 0
	case "rest":
		if e.Arousal < 0.3 {
			return 1 - e.Arousal
		}
		return 0
	case "wander":
		if e.Arousal > 0.5 && e.Valence < 0 {
			return e.Arousal * -e.Valence
		}
		return 0
	case "avoid":
		if e.Valence < 0 {
			return -e.Valence
		}
		return 0
	default:
		return 0
	}
}

func memorySupport(goal, target string, memories []MemoryRef) float64 {
	if len(memories) == 0 {
		return 0
	}
	subject := target
	if subject == "" {
		subject = goal
	}
	matches := 0
	for _, m := range memories {
		if m.Subject == subject {
			matches++
		}
	}
	return float64(matches) / float64(len(memories))
}

func crystalSupport(goal, target string, crystals []CrystalRef) (float64, bool) {
	subject := target
	if subject == "" {
		subject = goal
	}
	for _, c := range crystals {
		if c.Subject == subject && strings.EqualFold(c.Type, goal) {
			return 0.7 + 0.3*c.Strength, true
		}
	}
	return 0, false
}

func relationshipSupport(goal string, bond RelationshipRef) float64 {
	switch strings.ToLower(goal) {
	case "bond", "approach":
		return bond.Trust*0.5 + bond.Familiarity*0.5
	case "avoid":
		if bond.Trust < 0.3 {
			return 1 - bond.Trust
		}
		return 0
	default:
		return 0
	}
}

// Autonomous derives an intent from current emotion when the stack is
// empty and the entity is autonomous, per spec.md §4.5's decision table.
// The supplied coin is consulted only for the arousal<0.3 tie-break
// between "rest" and "observe", keeping all randomness routed through the
// world's owned RNG.
func Autonomous(e emotion.PAD, now float64, coin func() bool) Intent {
	switch {
	case e.Arousal > 0.5 && e.Valence > 0:
		return Intent{Goal: "explore", Motivation: e.Arousal, CreatedAt: now}
	case e.Arousal > 0.5 && e.Valence < 0:
		return Intent{Goal: "wander", Motivation: e.Arousal, CreatedAt: now}
	case e.Arousal < 0.3:
		if coin() {
			return Intent{Goal: "rest", Motivation: 1 - e.Arousal, CreatedAt: now}
		}
		return Intent{Goal: "observe", Motivation: 1 - e.Arousal, CreatedAt: now}
	default:
		return Intent{Goal: "wander", Motivation: 0.2, CreatedAt: now}
	}
}
