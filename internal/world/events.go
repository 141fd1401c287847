package world

// EventBus fans world-level events out to named-topic subscribers,
// synchronously and in subscription order — the same single-threaded,
// no-buffering shape as internal/diagnostics.Registry, generalized from
// one fixed Kind enum to an open set of string-keyed event names (spec.md
// §6.3: spawn, destroy, utterance, emergence.chunk, climate.change,
// crystal.form, link.form, link.decay, and any future name).
type EventBus struct {
	handlers map[string][]func(any)
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]func(any))}
}

// Subscribe registers fn under name. Delivery order matches registration
// order.
func (b *EventBus) Subscribe(name string, fn func(any)) {
	b.handlers[name] = append(b.handlers[name], fn)
}

// Emit delivers payload to every handler registered under name.
func (b *EventBus) Emit(name string, payload any) {
	for _, fn := range b.handlers[name] {
		fn(payload)
	}
}

// SpawnPayload is the payload of a "spawn" event.
type SpawnPayload struct {
	EntityID   string
	MaterialID string
	X, Y       float64
}

// DestroyPayload is the payload of a "destroy" event.
type DestroyPayload struct {
	EntityID string
}

// UtterancePayload is the payload of an "utterance" event.
type UtterancePayload struct {
	Speaker, Listener, Text string
	Timestamp               float64
}

// EmergenceChunkPayload is the payload of an "emergence.chunk" event
// (a new lexicon term crystallized from the transcript).
type EmergenceChunkPayload struct {
	Term     string
	Category string
}

// ClimateChangePayload is the payload of a "climate.change" event.
type ClimateChangePayload struct {
	Label string
}

// CrystalFormPayload is the payload of a "crystal.form" event.
type CrystalFormPayload struct {
	Subject, Type string
	Strength      float64
}

// LinkFormPayload is the payload of a "link.form" event.
type LinkFormPayload struct {
	From, To string
	Strength float64
}

// LinkDecayPayload is the payload of a "link.decay" event.
type LinkDecayPayload struct {
	From, To string
}
