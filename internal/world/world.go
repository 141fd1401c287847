// Package world implements the orchestrator: it owns world time, the
// entity set, the spatial grid, transient and resource fields, the
// transcript/lexicon/crystallizer, the memory crystallizer, the
// emotional climate, the event bus, and the seeded RNG, and wires every
// other package's per-tick update into the single entry point, Tick.
//
// Grounded on the entry-point wiring style of a chi-routed HTTP backend's
// main package (construct every subsystem once, hand them to the
// handlers that need them) generalized from request handlers to a single
// synchronous Tick call, and on a settlement-simulation's Simulation
// struct for the shape of "one struct owns every subsystem and drives
// them in a fixed order every step."
package world

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/embergrove/murmur/internal/climate"
	"github.com/embergrove/murmur/internal/diagnostics"
	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/engine"
	"github.com/embergrove/murmur/internal/entity"
	"github.com/embergrove/murmur/internal/field"
	"github.com/embergrove/murmur/internal/intent"
	"github.com/embergrove/murmur/internal/lexicon"
	"github.com/embergrove/murmur/internal/link"
	memcrystal "github.com/embergrove/murmur/internal/crystal"
	"github.com/embergrove/murmur/internal/memorylog"
	"github.com/embergrove/murmur/internal/needs"
	"github.com/embergrove/murmur/internal/relationship"
	"github.com/embergrove/murmur/internal/rng"
	"github.com/embergrove/murmur/internal/spatial"
	"github.com/embergrove/murmur/pkg/material"
)

// Config parameterizes one World.
type Config struct {
	ID       string
	RNGSeed  uint32
	Bounds   engine.Bounds
	CellSize float64 // spatial grid cell size, also the engine's DefaultProximity; defaults to 160

	RelationshipConfig relationship.Config
	ReasonerConfig     intent.Config
	LexiconConfig      lexicon.Config
	CrystalConfig      memcrystal.Config

	LinkDecayRate        float64 // per-tick multiplicative decay on cognitive link strength
	LinkPropagationDecay float64 // per-hop attenuation for link.Propagate
	LinkMinStrength      float64
	LinkMaxHops          int

	ClimateDecayRate float64 // per-second drift-to-baseline rate

	RelationshipDecayEvery int // not read by Tick: relationship decay runs on every tick
}

// DefaultConfig returns spec.md's documented defaults for every subsystem.
func DefaultConfig() Config {
	return Config{
		RNGSeed:                1,
		Bounds:                 engine.Bounds{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000, Policy: engine.BoundsBounce, Damping: 0.85},
		CellSize:               160,
		RelationshipConfig:     relationship.DefaultConfig(),
		ReasonerConfig:         intent.DefaultConfig(),
		LexiconConfig:          lexicon.DefaultConfig(),
		CrystalConfig:          memcrystal.DefaultConfig(),
		LinkDecayRate:          0.01,
		LinkPropagationDecay:   0.1,
		LinkMinStrength:        0.05,
		LinkMaxHops:            4,
		ClimateDecayRate:       0.001,
		RelationshipDecayEvery: 1,
	}
}

// World is the orchestrator owning every simulation subsystem.
type World struct {
	cfg Config

	ID        string
	Clock     float64
	TickCount uint64
	RNG       *rng.Source

	catalog *material.Catalog

	order []string
	byID  map[string]*entity.Entity
	grid  *spatial.Grid

	Fields         *field.Set
	ResourceFields *needs.FieldSet

	Transcript      *lexicon.Transcript
	Lexicon         *lexicon.Lexicon
	LexCrystallizer *lexicon.Crystallizer

	MemCrystallizer *memcrystal.Crystallizer

	Climate *climate.Climate

	Reasoner *intent.Reasoner

	Events      *EventBus
	Diagnostics *diagnostics.Registry

	eng *engine.Engine
}

// New constructs an empty world governed by cfg, wired to catalog for
// material lookups during restore. catalog may be nil if the caller never
// restores a snapshot.
func New(cfg Config, catalog *material.Catalog) *World {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.CellSize <= 0 {
		cfg.CellSize = 160
	}

	w := &World{
		cfg:             cfg,
		ID:              cfg.ID,
		RNG:             rng.New(cfg.RNGSeed),
		catalog:         catalog,
		byID:            make(map[string]*entity.Entity),
		grid:            spatial.New(cfg.CellSize),
		Fields:          field.NewSet(),
		ResourceFields:  needs.NewFieldSet(),
		Transcript:      lexicon.NewTranscript(0),
		Lexicon:         lexicon.New(),
		LexCrystallizer: lexicon.NewCrystallizer(cfg.LexiconConfig),
		MemCrystallizer: memcrystal.New(cfg.CrystalConfig),
		Climate:         climate.New(),
		Reasoner:        intent.NewReasoner(cfg.ReasonerConfig),
		Events:          NewEventBus(),
		Diagnostics:     diagnostics.NewRegistry(),
	}
	w.eng = engine.New(engine.Config{
		Bounds:           cfg.Bounds,
		DefaultProximity: cfg.CellSize,
		FieldEffect:      w.applyFieldEffect,
		AutonomousCoin:   w.RNG.Bool,
	})
	return w
}

// applyFieldEffect is the engine's caller-supplied field-effect hook: a
// field's payload is opaque (spec.md §3.1), so the only universal effect
// the core applies is an optional numeric "emotion" sub-map nudging the
// entity's PAD, and an optional numeric "need" sub-map replenishing a
// named need. Anything else in Payload is left for collaborators reading
// it back out of the entity's memory/trigger context.
func (w *World) applyFieldEffect(e *entity.Entity, f *field.Field, dt float64) {
	if f.Payload == nil {
		return
	}
	if raw, ok := f.Payload["emotion"]; ok && e.HasEmotion() {
		if delta, ok := raw.(map[string]float64); ok {
			e.Emotion.Feel(emotion.PAD{Valence: delta["valence"] * dt, Arousal: delta["arousal"] * dt, Dominance: delta["dominance"] * dt})
		}
	}
	if raw, ok := f.Payload["need"]; ok && e.Needs != nil {
		if replenish, ok := raw.(map[string]float64); ok {
			for id, amount := range replenish {
				if n := e.Needs.Get(id); n != nil {
					n.Current = rng.Clamp(n.Current+amount*dt, 0, 1)
				}
			}
		}
	}
}

// Spawn creates a new entity from mat at (x,y), attaches every ontology
// component (whatever the material says), indexes it, and records the
// spawn event both as a memory event (salience 1.0, per spec.md §3.3)
// and on the world event bus.
func (w *World) Spawn(mat *material.Spec, x, y float64) *entity.Entity {
	e := entity.New(mat, x, y)
	w.attachOntology(e, mat)

	w.byID[e.ID] = e
	w.order = append(w.order, e.ID)
	w.grid.Insert(e.ID, e.X, e.Y)

	if e.Log != nil {
		e.Log.Append(memorylog.Event{Timestamp: w.Clock, Type: memorylog.Spawn, Subject: e.ID, Salience: 1.0})
	}
	if e.Memory != nil {
		e.Memory.Add(memorylog.Event{Timestamp: w.Clock, Type: memorylog.Spawn, Subject: e.ID, Salience: 1.0})
	}

	materialID := ""
	if mat != nil {
		materialID = mat.ID
	}
	w.Events.Emit("spawn", SpawnPayload{EntityID: e.ID, MaterialID: materialID, X: x, Y: y})
	return e
}

func (w *World) attachOntology(e *entity.Entity, mat *material.Spec) {
	baseline := emotion.Baseline("neutral")
	memSize := 0
	isAutonomous := true
	if mat != nil {
		if mat.Ontology.EmotionBaseline != "" {
			baseline = emotion.Baseline(mat.Ontology.EmotionBaseline)
		}
		memSize = mat.MemorySize()
	}
	pad := baseline
	e.Emotion = &pad
	e.Memory = memorylog.NewRing(memSize)
	e.Log = memorylog.NewLog(e.ID)
	e.Intent = intent.NewStack(intent.Hooks{})
	e.Relationships = relationship.NewStore(w.cfg.RelationshipConfig)
	e.CognitiveLinks = link.NewSet()
	e.Needs = needs.NewStore()
	e.IsAutonomous = isAutonomous

	if mat != nil {
		if mat.Ontology.IntentDefault != "" {
			e.Intent.Push(intent.Intent{Goal: mat.Ontology.IntentDefault, Motivation: 0.5, CreatedAt: w.Clock})
		}
		for _, r := range mat.Needs.Resources {
			e.Needs.Set(needs.Need{
				ID:                r.ID,
				Initial:           r.Initial,
				DepletionRate:     r.DepletionRate,
				CriticalThreshold: r.CriticalThreshold,
				EmotionalImpact:   emotion.PAD{Valence: -r.EmotionalImpact},
			})
		}
	}
}

// RemoveEntity destroys the entity with id, recording a climate event
// proportional to its most recent memory's salience before removal, then
// fires "destroy" on the event bus.
func (w *World) RemoveEntity(id string) {
	e, ok := w.byID[id]
	if !ok {
		return
	}
	intensity := 0.5
	if e.Memory != nil {
		if recent := e.Memory.Recall(nil); len(recent) > 0 {
			intensity = recent[0].Salience
		}
	}
	w.Climate.RecordEntityDeath(intensity)

	delete(w.byID, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.grid.Remove(id)

	w.Events.Emit("destroy", DestroyPayload{EntityID: id})
}

// Get returns the entity with id, or nil.
func (w *World) Get(id string) *entity.Entity { return w.byID[id] }

// Entities returns every entity in spawn order. Callers must not mutate
// the returned slice.
func (w *World) Entities() []*entity.Entity {
	out := make([]*entity.Entity, len(w.order))
	for i, id := range w.order {
		out[i] = w.byID[id]
	}
	return out
}

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.byID) }

// Tick advances the world by dt seconds through every subsystem, in the
// order described by spec.md §2: engine integration over the grid,
// per-entity ontology updates, resource fields, climate, and the
// transcript/lexicon/crystal schedule.
func (w *World) Tick(dt float64) {
	w.Clock += dt
	w.TickCount++

	entities := w.Entities()
	w.eng.Tick(entities, w.Fields, w.grid, w.Clock, dt)

	for _, e := range entities {
		w.updateOntology(e, dt)
	}

	w.ResourceFields.Tick(dt)

	before := w.Climate.Describe()
	w.Climate.DriftToBaseline(w.cfg.ClimateDecayRate, dt)
	for _, e := range entities {
		if e.HasEmotion() {
			w.Climate.Influence(e.Emotion, dt)
		}
	}
	if after := w.Climate.Describe(); after != before {
		w.Events.Emit("climate.change", ClimateChangePayload{Label: after})
	}

	if formed := w.LexCrystallizer.Tick(w.Lexicon, w.Transcript, w.Clock); len(formed) > 0 {
		for _, term := range formed {
			entry := w.Lexicon.Get(term)
			cat := ""
			if entry != nil {
				cat = entry.Category
			}
			w.Events.Emit("emergence.chunk", EmergenceChunkPayload{Term: term, Category: cat})
		}
	}

	w.crystallizeMemories(entities)
	w.propagateCognitiveSignals(entities)
}

// updateOntology runs the per-entity PAD-drift, relationship decay, link
// decay, and needs-depletion steps that are not part of the physical tick.
func (w *World) updateOntology(e *entity.Entity, dt float64) {
	if e.HasEmotion() {
		e.Emotion.DriftToBaseline(emotion.Baseline("neutral"), 0.01*dt)
	}
	if e.Needs != nil {
		e.Needs.Tick(e.Emotion, dt)
	}
	if e.Relationships != nil {
		e.Relationships.DecayTick(w.Clock, dt)
	}
	if e.CognitiveLinks != nil {
		for _, peer := range e.CognitiveLinks.DecayTick(w.cfg.LinkDecayRate) {
			w.Events.Emit("link.decay", LinkDecayPayload{From: e.ID, To: peer})
		}
	}
}

// crystallizeMemories groups every live entity's memory ring by
// (subject,type) and feeds each group to the memory crystallizer.
func (w *World) crystallizeMemories(entities []*entity.Entity) {
	type key struct{ subject, typ string }
	groups := make(map[key][]memcrystal.Event)
	for _, e := range entities {
		if e.Memory == nil {
			continue
		}
		for _, ev := range e.Memory.All() {
			k := key{ev.Subject, string(ev.Type)}
			groups[k] = append(groups[k], memcrystal.Event{Subject: ev.Subject, Type: string(ev.Type), Salience: ev.Salience})
		}
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].subject != keys[j].subject {
			return keys[i].subject < keys[j].subject
		}
		return keys[i].typ < keys[j].typ
	})

	for _, k := range keys {
		before, existed := w.MemCrystallizer.Find(k.subject, k.typ)
		cr := w.MemCrystallizer.Crystallize(k.subject, k.typ, groups[k], w.Clock)
		if cr != nil && (!existed || before.Strength != cr.Strength) {
			w.Events.Emit("crystal.form", CrystalFormPayload{Subject: cr.Subject, Type: cr.Type, Strength: cr.Strength})
		}
	}
}

// propagateCognitiveSignals re-broadcasts each entity's current emotional
// valence as a low-strength signal across its cognitive links, letting
// strongly-linked peers resonate toward it. This is the per-tick
// multi-hop propagation spec.md §4.7 describes as optional.
func (w *World) propagateCognitiveSignals(entities []*entity.Entity) {
	for _, e := range entities {
		if e.CognitiveLinks == nil || e.CognitiveLinks.Len() == 0 || !e.HasEmotion() {
			continue
		}
		signal := link.Signal{
			ID:        e.ID + ":" + "emotion",
			Type:      link.EmotionSignal,
			Source:    e.ID,
			Timestamp: w.Clock,
			Payload:   *e.Emotion,
			Strength:  math.Abs(e.Emotion.Valence),
		}
		link.Propagate(signal, w.cfg.LinkPropagationDecay, w.cfg.LinkMinStrength, w.cfg.LinkMaxHops,
			func(id string) *link.Set {
				peer := w.byID[id]
				if peer == nil {
					return nil
				}
				return peer.CognitiveLinks
			},
			func(receiver string, s link.Signal, strength float64) {
				peer := w.byID[receiver]
				if peer == nil || !peer.HasEmotion() {
					return
				}
				pad, ok := s.Payload.(emotion.PAD)
				if !ok {
					return
				}
				peer.Emotion.Resonate(pad, strength)
			})
	}
}

// RecordSpeech appends an utterance to the transcript; the lexicon
// crystallizer picks it up on its own schedule during Tick.
func (w *World) RecordSpeech(speaker, text, listener string, pad *emotion.PAD) {
	w.Transcript.Record(lexicon.Utterance{
		Speaker:   speaker,
		Listener:  listener,
		Text:      text,
		Timestamp: w.Clock,
		Emotion:   pad,
	})
	w.Events.Emit("utterance", UtterancePayload{Speaker: speaker, Listener: listener, Text: text, Timestamp: w.Clock})
}

// BroadcastEvent fans out a named event to every entity's triggerContext
// as "event.<type>.<key>" = value, plus "event.<type>" = 1. It only
// updates triggerContext: it does not evaluate emotion triggers or
// behavior timers; EvaluateEmotionTriggers does the former.
func (w *World) BroadcastEvent(eventType string, payload map[string]float64) {
	for _, e := range w.byID {
		for k, v := range payload {
			e.TriggerContext["event."+eventType+"."+k] = v
		}
		e.TriggerContext["event."+eventType] = 1
	}
}

// BroadcastContext merges contextMap into every entity's triggerContext.
func (w *World) BroadcastContext(contextMap map[string]float64) {
	for _, e := range w.byID {
		e.TriggerContext.Merge(contextMap)
	}
}

// EvaluateEmotionTriggers runs the given compiled triggers against e's
// triggerContext and resonates e's PAD accordingly (exposed so
// collaborators can wire material.emotion.transitions without this
// package importing pkg/material's trigger-compile step).
func (w *World) EvaluateEmotionTriggers(e *entity.Entity, triggers []emotion.Trigger) {
	if !e.HasEmotion() {
		return
	}
	emotion.EvaluateTriggers(e.Emotion, triggers, e.TriggerContext, e.ID, w.Diagnostics)
}

// AddResourceField registers a world-level resource field.
func (w *World) AddResourceField(f *needs.Field) {
	w.ResourceFields.Add(f)
}

// GetResourceIntensity returns the strongest resourceType intensity at (x,y).
func (w *World) GetResourceIntensity(resourceType string, x, y float64) float64 {
	return w.ResourceFields.IntensityAt(resourceType, x, y)
}

// ConsumeResource draws amount of resourceType from the strongest field at
// (x,y) and returns the quantity actually consumed.
func (w *World) ConsumeResource(resourceType string, x, y, amount float64) float64 {
	return w.ResourceFields.Consume(resourceType, x, y, amount)
}

// SpawnField registers a transient spatial field with a freshly generated id.
func (w *World) SpawnField(materialID string, x, y, radius, lifetime float64, payload map[string]any) *field.Field {
	f := &field.Field{
		ID:                uuid.NewString(),
		MaterialID:        materialID,
		X:                 x,
		Y:                 y,
		Radius:            radius,
		RemainingLifetime: lifetime,
		Payload:           payload,
	}
	w.Fields.Add(f)
	return f
}
