// Package material defines the value-typed MaterialSpec the simulation
// kernel consumes. The kernel never parses a material-definition document
// itself — callers build a Spec (by hand, or via the yaml.v3 catalog loader
// in this package) and hand it to the kernel already typed.
package material

// Spec is a fully-parsed material definition. Every section is optional
// except ID; missing sections resolve to the documented defaults at the
// point of use rather than here, so a Spec can be partially populated.
type Spec struct {
	ID            string            `yaml:"id" json:"id"`
	SchemaVersion string            `yaml:"schemaVersion,omitempty" json:"schemaVersion,omitempty"`
	Essence       string            `yaml:"essence,omitempty" json:"essence,omitempty"`
	EssenceByLang map[string]string `yaml:"essenceByLang,omitempty" json:"essenceByLang,omitempty"`

	Manifestation Manifestation `yaml:"manifestation,omitempty" json:"manifestation,omitempty"`
	Physics       Physics       `yaml:"physics,omitempty" json:"physics,omitempty"`
	Ontology      Ontology      `yaml:"ontology,omitempty" json:"ontology,omitempty"`
	Behavior      Behavior      `yaml:"behavior,omitempty" json:"behavior,omitempty"`
	Emotion       Emotion       `yaml:"emotion,omitempty" json:"emotion,omitempty"`
	Memory        Memory        `yaml:"memory,omitempty" json:"memory,omitempty"`
	Dialogue      Dialogue      `yaml:"dialogue,omitempty" json:"dialogue,omitempty"`
	Skills        Skills        `yaml:"skills,omitempty" json:"skills,omitempty"`
	Language      Language      `yaml:"languageProfile,omitempty" json:"languageProfile,omitempty"`
	Needs         Needs         `yaml:"needs,omitempty" json:"needs,omitempty"`
}

type Manifestation struct {
	Emoji string `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Aging Aging  `yaml:"aging,omitempty" json:"aging,omitempty"`
}

type Aging struct {
	StartOpacity *float64 `yaml:"start_opacity,omitempty" json:"start_opacity,omitempty"`
	DecayRate    *float64 `yaml:"decay_rate,omitempty" json:"decay_rate,omitempty"`
}

type Physics struct {
	Mass          *float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
	Friction      *float64 `yaml:"friction,omitempty" json:"friction,omitempty"`
	Bounce        *float64 `yaml:"bounce,omitempty" json:"bounce,omitempty"`
	Density       *float64 `yaml:"density,omitempty" json:"density,omitempty"`
	Conductivity  *float64 `yaml:"conductivity,omitempty" json:"conductivity,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Humidity      *float64 `yaml:"humidity,omitempty" json:"humidity,omitempty"`
	ProximityRadius *float64 `yaml:"proximityRadius,omitempty" json:"proximityRadius,omitempty"`
}

type Ontology struct {
	MemorySize     *int            `yaml:"memorySize,omitempty" json:"memorySize,omitempty"`
	EmotionBaseline string         `yaml:"emotionBaseline,omitempty" json:"emotionBaseline,omitempty"`
	IntentDefault   string         `yaml:"intentDefault,omitempty" json:"intentDefault,omitempty"`
}

type Behavior struct {
	OnHover     string   `yaml:"onHover,omitempty" json:"onHover,omitempty"`
	OnProximity string   `yaml:"onProximity,omitempty" json:"onProximity,omitempty"`
	OnIdle      string   `yaml:"onIdle,omitempty" json:"onIdle,omitempty"`
	Timers      []Timer  `yaml:"timers,omitempty" json:"timers,omitempty"`
	OnEmotion   string   `yaml:"onEmotion,omitempty" json:"onEmotion,omitempty"`
	OnEvent     string   `yaml:"onEvent,omitempty" json:"onEvent,omitempty"`
}

type Timer struct {
	Name       string  `yaml:"name" json:"name"`
	IntervalLo float64 `yaml:"intervalLo" json:"intervalLo"`
	IntervalHi float64 `yaml:"intervalHi" json:"intervalHi"`
	Event      string  `yaml:"event" json:"event"`
}

type Emotion struct {
	BaseState   string            `yaml:"base_state,omitempty" json:"base_state,omitempty"`
	Transitions []Transition      `yaml:"transitions,omitempty" json:"transitions,omitempty"`
	States      map[string][3]float64 `yaml:"states,omitempty" json:"states,omitempty"`
}

type Transition struct {
	When      string  `yaml:"when" json:"when"`
	Target    string  `yaml:"target" json:"target"`
	Intensity float64 `yaml:"intensity" json:"intensity"`
}

type Memory struct {
	Bindings  []string `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Flags     []string `yaml:"flags,omitempty" json:"flags,omitempty"`
	ShortTerm int      `yaml:"short_term,omitempty" json:"short_term,omitempty"`
	LongTerm  int      `yaml:"long_term,omitempty" json:"long_term,omitempty"`
}

type Dialogue struct {
	Intro          []string          `yaml:"intro,omitempty" json:"intro,omitempty"`
	SelfMonologue  []string          `yaml:"self_monologue,omitempty" json:"self_monologue,omitempty"`
	Event          map[string]string `yaml:"event,omitempty" json:"event,omitempty"`
}

type Skills struct {
	Learnable []string `yaml:"learnable,omitempty" json:"learnable,omitempty"`
}

type Language struct {
	Native         string             `yaml:"native,omitempty" json:"native,omitempty"`
	Weights        map[string]float64 `yaml:"weights,omitempty" json:"weights,omitempty"`
	AdaptToContext bool               `yaml:"adaptToContext,omitempty" json:"adaptToContext,omitempty"`
}

type Needs struct {
	Resources []ResourceNeed `yaml:"resources,omitempty" json:"resources,omitempty"`
}

type ResourceNeed struct {
	ID                string  `yaml:"id" json:"id"`
	Initial           float64 `yaml:"initial" json:"initial"`
	DepletionRate     float64 `yaml:"depletionRate" json:"depletionRate"`
	CriticalThreshold float64 `yaml:"criticalThreshold" json:"criticalThreshold"`
	EmotionalImpact   float64 `yaml:"emotionalImpact" json:"emotionalImpact"`
}

// Default engine-facing values used when a Spec omits a field.
const (
	DefaultFriction        = 0.02
	DefaultProximityRadius = 160.0
	DefaultBounceDamping   = 0.85
	DefaultStartOpacity    = 1.0
	DefaultOpacityDecay    = 0.0
	DefaultMemorySize      = 500
)

// Friction returns the spec's physics.friction or the documented default.
func (s *Spec) Friction() float64 {
	if s.Physics.Friction != nil {
		return *s.Physics.Friction
	}
	return DefaultFriction
}

// ProximityRadius returns the spec's physics.proximityRadius or the default.
func (s *Spec) ProximityRadius() float64 {
	if s.Physics.ProximityRadius != nil {
		return *s.Physics.ProximityRadius
	}
	return DefaultProximityRadius
}

// BounceDamping returns the spec's physics.bounce or the default.
func (s *Spec) BounceDamping() float64 {
	if s.Physics.Bounce != nil {
		return *s.Physics.Bounce
	}
	return DefaultBounceDamping
}

// StartOpacity returns the spec's manifestation.aging.start_opacity or 1.0.
func (s *Spec) StartOpacity() float64 {
	if s.Manifestation.Aging.StartOpacity != nil {
		return *s.Manifestation.Aging.StartOpacity
	}
	return DefaultStartOpacity
}

// OpacityDecayRate returns the spec's manifestation.aging.decay_rate or 0.
func (s *Spec) OpacityDecayRate() float64 {
	if s.Manifestation.Aging.DecayRate != nil {
		return *s.Manifestation.Aging.DecayRate
	}
	return DefaultOpacityDecay
}

// MemorySize returns the spec's ontology.memorySize or the default cap.
func (s *Spec) MemorySize() int {
	if s.Ontology.MemorySize != nil {
		return *s.Ontology.MemorySize
	}
	return DefaultMemorySize
}
