package world

import (
	"encoding/json"
	"sort"

	"github.com/embergrove/murmur/internal/climate"
	memcrystal "github.com/embergrove/murmur/internal/crystal"
	"github.com/embergrove/murmur/internal/diagnostics"
	"github.com/embergrove/murmur/internal/emotion"
	"github.com/embergrove/murmur/internal/entity"
	"github.com/embergrove/murmur/internal/field"
	"github.com/embergrove/murmur/internal/intent"
	"github.com/embergrove/murmur/internal/lexicon"
	"github.com/embergrove/murmur/internal/link"
	"github.com/embergrove/murmur/internal/memorylog"
	"github.com/embergrove/murmur/internal/needs"
	"github.com/embergrove/murmur/internal/relationship"
	"github.com/embergrove/murmur/pkg/material"
)

// SchemaVersion is stamped into every snapshot this build produces.
const SchemaVersion = 1

// EntitySnapshot is the serialized form of one entity, including every
// ontology component it carried.
type EntitySnapshot struct {
	ID                 string             `json:"id"`
	MaterialID         string             `json:"materialId,omitempty"`
	X                  float64            `json:"x"`
	Y                  float64            `json:"y"`
	VX                 float64            `json:"vx"`
	VY                 float64            `json:"vy"`
	Age                float64            `json:"age"`
	Entropy            float64            `json:"entropy"`
	Energy             float64            `json:"energy"`
	Opacity            float64            `json:"opacity"`
	IsAutonomous       bool               `json:"isAutonomous"`
	LanguagePreference []string           `json:"languagePreference,omitempty"`
	TriggerContext     map[string]float64 `json:"triggerContext,omitempty"`

	Emotion *emotion.PAD `json:"emotion,omitempty"`

	MemoryCap  int               `json:"memoryCap,omitempty"`
	MemoryRing []memorylog.Event `json:"memoryRing,omitempty"`

	LogOwner  string              `json:"logOwner,omitempty"`
	LogEvents []memorylog.Stamped `json:"logEvents,omitempty"`

	IntentStack []intent.Intent `json:"intentStack,omitempty"`

	Relationships map[string]*relationship.Bond `json:"relationships,omitempty"`

	CognitiveLinks map[string]*link.Edge `json:"cognitiveLinks,omitempty"`

	Needs map[string]*needs.Need `json:"needs,omitempty"`
}

// FieldSnapshot is the serialized form of one transient field.
type FieldSnapshot struct {
	ID                string         `json:"id"`
	MaterialID        string         `json:"materialId,omitempty"`
	X                 float64        `json:"x"`
	Y                 float64        `json:"y"`
	Radius            float64        `json:"radius"`
	RemainingLifetime float64        `json:"remainingLifetime"`
	Payload           map[string]any `json:"payload,omitempty"`
}

// ResourceFieldSnapshot is the serialized form of one resource field.
type ResourceFieldSnapshot struct {
	ID                string           `json:"id"`
	ResourceType      string           `json:"resourceType"`
	Kind              needs.SourceKind `json:"kind"`
	X                 float64          `json:"x"`
	Y                 float64          `json:"y"`
	Radius            float64          `json:"radius"`
	FalloffExponent   float64          `json:"falloffExponent,omitempty"`
	RectW             float64          `json:"rectW,omitempty"`
	RectH             float64          `json:"rectH,omitempty"`
	Intensity         float64          `json:"intensity"`
	OriginalIntensity float64          `json:"originalIntensity"`
	RegenerationRate  float64          `json:"regenerationRate,omitempty"`
	DepletionRate     float64          `json:"depletionRate,omitempty"`
}

// body is the part of Snapshot handled by ordinary struct (un)marshaling;
// Snapshot wraps it with the captured-unknown-keys machinery so restore
// round-trips forward-compatibly (spec.md §6.2).
type body struct {
	SchemaVersion int     `json:"schemaVersion"`
	WorldID       string  `json:"worldId"`
	Clock         float64 `json:"clock"`
	TickCount     uint64  `json:"tickCount"`
	RNGSeed       uint32  `json:"rngSeed"`
	RNGState      uint32  `json:"rngState"`
	RNGDraws      uint64  `json:"rngDraws"`

	Entities       []EntitySnapshot        `json:"entities"`
	Fields         []FieldSnapshot         `json:"fields"`
	ResourceFields []ResourceFieldSnapshot `json:"resourceFields"`

	Transcript []lexicon.Utterance   `json:"transcript"`
	Lexicon    []*lexicon.Entry      `json:"lexicon"`
	Crystals   []*memcrystal.Crystal `json:"crystals"`

	Climate climate.Climate `json:"climate"`
}

// Snapshot is a complete, serializable copy of a World's state. Keys this
// build does not recognize are preserved verbatim on restore rather than
// dropped, per spec.md §6.2's forward-compatibility rule.
type Snapshot struct {
	body
	extra map[string]json.RawMessage
}

// MarshalJSON emits the known fields plus any captured-but-unrecognized
// keys from a prior restore.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(s.body)
	if err != nil {
		return nil, err
	}
	if len(s.extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range s.extra {
		if _, present := merged[k]; !present {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and retains every key this build
// does not recognize in extra, so a later MarshalJSON can re-emit them.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &s.body); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known, err := json.Marshal(s.body)
	if err != nil {
		return err
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return err
	}
	s.extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if _, present := knownMap[k]; !present {
			s.extra[k] = v
		}
	}
	return nil
}

// Snapshot captures the entire world state as a plain serializable record.
func (w *World) Snapshot() Snapshot {
	b := body{
		SchemaVersion: SchemaVersion,
		WorldID:       w.ID,
		Clock:         w.Clock,
		TickCount:     w.TickCount,
		RNGSeed:       w.cfg.RNGSeed,
		RNGState:      w.RNG.State(),
		RNGDraws:      w.RNG.Draws(),
		Transcript:    w.Transcript.All(),
		Lexicon:       w.Lexicon.All(),
		Crystals:      w.MemCrystallizer.All(),
		Climate:       *w.Climate,
	}

	for _, id := range w.order {
		b.Entities = append(b.Entities, snapshotEntity(w.byID[id]))
	}
	for _, f := range w.Fields.All() {
		b.Fields = append(b.Fields, FieldSnapshot{
			ID: f.ID, MaterialID: f.MaterialID, X: f.X, Y: f.Y,
			Radius: f.Radius, RemainingLifetime: f.RemainingLifetime, Payload: f.Payload,
		})
	}

	all := w.ResourceFields.All()
	resourceIDs := make([]string, 0, len(all))
	for id := range all {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)
	for _, id := range resourceIDs {
		f := all[id]
		b.ResourceFields = append(b.ResourceFields, ResourceFieldSnapshot{
			ID: f.ID, ResourceType: f.ResourceType, Kind: f.Kind, X: f.X, Y: f.Y,
			Radius: f.Radius, FalloffExponent: f.FalloffExponent, RectW: f.RectW, RectH: f.RectH,
			Intensity: f.Intensity, OriginalIntensity: f.OriginalIntensity,
			RegenerationRate: f.RegenerationRate, DepletionRate: f.DepletionRate,
		})
	}

	return Snapshot{body: b}
}

func snapshotEntity(e *entity.Entity) EntitySnapshot {
	es := EntitySnapshot{
		ID: e.ID, X: e.X, Y: e.Y, VX: e.VX, VY: e.VY,
		Age: e.Age, Entropy: e.Entropy, Energy: e.Energy, Opacity: e.Opacity,
		IsAutonomous: e.IsAutonomous, LanguagePreference: e.LanguagePreference,
		TriggerContext: map[string]float64(e.TriggerContext),
	}
	if e.Material != nil {
		es.MaterialID = e.Material.ID
	}
	if e.Emotion != nil {
		pad := *e.Emotion
		es.Emotion = &pad
	}
	if e.Memory != nil {
		es.MemoryCap = e.Memory.Cap()
		es.MemoryRing = e.Memory.All()
	}
	if e.Log != nil {
		es.LogOwner = e.Log.Owner()
		for _, s := range e.Log.All() {
			es.LogEvents = append(es.LogEvents, s)
		}
	}
	if e.Intent != nil {
		es.IntentStack = e.Intent.All()
	}
	if e.Relationships != nil {
		es.Relationships = e.Relationships.All()
	}
	if e.CognitiveLinks != nil {
		es.CognitiveLinks = e.CognitiveLinks.All()
	}
	if e.Needs != nil {
		es.Needs = e.Needs.All()
	}
	return es
}

// Restore rebuilds a World from snap using the two-pass procedure spec.md
// §4.12 documents: pass 1 materializes every entity without its relational
// ontology (relationships/cognitive links), pass 2 populates those from
// the id index so forward references within the entity list resolve
// regardless of serialization order. Materials are looked up in catalog;
// a field referencing an unregistered material is skipped, and an entity
// referencing one is restored without a material; both raise a
// MissingReference diagnostic.
func Restore(snap Snapshot, cfg Config, catalog *material.Catalog) *World {
	cfg.ID = snap.WorldID
	cfg.RNGSeed = snap.RNGSeed
	w := New(cfg, catalog)
	w.Clock = snap.Clock
	w.TickCount = snap.TickCount
	w.RNG.Restore(snap.RNGState, snap.RNGDraws)

	w.Transcript.Restore(snap.Transcript)
	w.Lexicon.Restore(snap.Lexicon)
	w.MemCrystallizer.Restore(snap.Crystals)
	if snap.Climate != (climate.Climate{}) {
		*w.Climate = snap.Climate
	}

	// Pass 1: materialize entities without relationships/cognitive links.
	for _, es := range snap.Entities {
		var mat *material.Spec
		if es.MaterialID != "" && catalog != nil {
			if m, ok := catalog.Get(es.MaterialID); ok {
				mat = m
			} else {
				w.Diagnostics.Warnf(diagnostics.MissingReference, es.ID, "material %q not registered; entity restored without it", es.MaterialID)
			}
		}
		e := restoreEntity(es, mat)
		w.byID[e.ID] = e
		w.order = append(w.order, e.ID)
		w.grid.Insert(e.ID, e.X, e.Y)
	}

	// Pass 2: link relationships and cognitive links via the id index;
	// missing peers are silently dropped (they were never materialized).
	for _, es := range snap.Entities {
		e := w.byID[es.ID]
		if e == nil {
			continue
		}
		if e.Relationships != nil {
			for peer, bond := range es.Relationships {
				if _, ok := w.byID[peer]; !ok {
					continue
				}
				cp := *bond
				*e.Relationships.Reinforce(peer, 0, 0, bond.LastInteraction) = cp
			}
		}
		if e.CognitiveLinks != nil {
			for peer, edge := range es.CognitiveLinks {
				if _, ok := w.byID[peer]; !ok {
					continue
				}
				cp := *edge
				*e.CognitiveLinks.Reinforce(peer, edge.Strength, edge.LastReinforced) = cp
			}
		}
	}

	for _, fs := range snap.Fields {
		if fs.MaterialID != "" && catalog != nil {
			if _, ok := catalog.Get(fs.MaterialID); !ok {
				w.Diagnostics.Warnf(diagnostics.MissingReference, fs.ID, "field material %q not registered; field skipped", fs.MaterialID)
				continue
			}
		}
		w.Fields.Add(&field.Field{
			ID: fs.ID, MaterialID: fs.MaterialID, X: fs.X, Y: fs.Y,
			Radius: fs.Radius, RemainingLifetime: fs.RemainingLifetime, Payload: fs.Payload,
		})
	}

	for _, rfs := range snap.ResourceFields {
		w.ResourceFields.Add(&needs.Field{
			ID: rfs.ID, ResourceType: rfs.ResourceType, Kind: rfs.Kind, X: rfs.X, Y: rfs.Y,
			Radius: rfs.Radius, FalloffExponent: rfs.FalloffExponent, RectW: rfs.RectW, RectH: rfs.RectH,
			Intensity: rfs.Intensity, OriginalIntensity: rfs.OriginalIntensity,
			RegenerationRate: rfs.RegenerationRate, DepletionRate: rfs.DepletionRate,
		})
	}

	return w
}

func restoreEntity(es EntitySnapshot, mat *material.Spec) *entity.Entity {
	e := entity.New(mat, es.X, es.Y)
	e.ID = es.ID
	e.VX, e.VY = es.VX, es.VY
	e.Age, e.Entropy, e.Energy, e.Opacity = es.Age, es.Entropy, es.Energy, es.Opacity
	e.IsAutonomous = es.IsAutonomous
	e.LanguagePreference = es.LanguagePreference
	if es.TriggerContext != nil {
		e.TriggerContext = entity.TriggerContext(es.TriggerContext)
	}

	if es.Emotion != nil {
		pad := *es.Emotion
		e.Emotion = &pad
	}

	// Every component below is attached unconditionally because
	// attachOntology does the same on Spawn: a component present but empty
	// (an idle intent stack, a memory ring with no events yet) must come
	// back non-nil, or later ticks take the no-ontology branch the original
	// never would have (e.g. autonomous intent generation, which also
	// draws the RNG) and the restored world quietly diverges from the one
	// that produced the snapshot.
	ring := memorylog.NewRing(es.MemoryCap)
	for _, ev := range es.MemoryRing {
		ring.Add(ev)
	}
	e.Memory = ring

	log := memorylog.NewLog(es.LogOwner)
	log.Restore(es.LogOwner, es.LogEvents)
	e.Log = log

	e.Intent = intent.NewStack(intent.Hooks{})
	e.Intent.Restore(es.IntentStack)

	e.Relationships = relationship.NewStore(relationship.DefaultConfig())
	e.CognitiveLinks = link.NewSet()

	e.Needs = needs.NewStore()
	e.Needs.Restore(es.Needs)

	return e
}
