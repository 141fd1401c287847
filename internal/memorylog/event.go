// Package memorylog implements an entity's two memory representations: a
// bounded ring buffer of recent events, and an optional vector-clock
// replicated log admitting commutative, idempotent merges across entities.
package memorylog

// EventType enumerates the kinds of memory event an entity can record.
type EventType string

const (
	Spawn         EventType = "spawn"
	Interaction   EventType = "interaction"
	Observation   EventType = "observation"
	Emotion       EventType = "emotion"
	FieldSpawn    EventType = "field_spawn"
	IntentChange  EventType = "intent_change"
	Fact          EventType = "fact"
	Custom        EventType = "custom"
)

// Event is a single memory event.
type Event struct {
	Timestamp float64
	Type      EventType
	Subject   string
	Content   string
	Salience  float64 // [0,1]
}
