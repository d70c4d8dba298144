// Package telemetry provides population health tracking, bookmarking,
// snapshots and replay logs.
package telemetry

// EventType identifies telemetry events.
type EventType string

const (
	EventBirth       EventType = "birth"
	EventDeath       EventType = "death"
	EventMeal        EventType = "meal"
	EventConception  EventType = "conception"
	EventPathFailure EventType = "path_failure"
	EventStaleTarget EventType = "stale_target"
	EventPlantSpread EventType = "plant_spread"
)

// Event is a single notable occurrence within a tick.
type Event struct {
	Type     EventType `json:"type" csv:"type"`
	Tick     uint64    `json:"tick" csv:"tick"`
	EntityID uint64    `json:"id" csv:"id"`

	// Optional fields depending on event type
	TargetID uint64 `json:"target,omitempty" csv:"target"` // plant eaten, parent of a birth, mate of a conception
	Amount   int    `json:"amount,omitempty" csv:"amount"` // nutrition gained or calories at death
	X        int    `json:"x" csv:"x"`
	Y        int    `json:"y" csv:"y"`
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick, childID, parentID uint64, x, y int) Event {
	return Event{Type: EventBirth, Tick: tick, EntityID: childID, TargetID: parentID, X: x, Y: y}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick, id uint64, calories, x, y int) Event {
	return Event{Type: EventDeath, Tick: tick, EntityID: id, Amount: calories, X: x, Y: y}
}

// NewMealEvent creates an event for a completed meal.
func NewMealEvent(tick, id, plantID uint64, nutrition, x, y int) Event {
	return Event{Type: EventMeal, Tick: tick, EntityID: id, TargetID: plantID, Amount: nutrition, X: x, Y: y}
}

// NewConceptionEvent creates a conception event.
func NewConceptionEvent(tick, id, mateID uint64, cost, x, y int) Event {
	return Event{Type: EventConception, Tick: tick, EntityID: id, TargetID: mateID, Amount: cost, X: x, Y: y}
}

// NewPathFailureEvent records an unreachable goal at (x, y).
func NewPathFailureEvent(tick, id uint64, x, y int) Event {
	return Event{Type: EventPathFailure, Tick: tick, EntityID: id, X: x, Y: y}
}

// NewStaleTargetEvent records an eat action whose plant was gone or claimed.
func NewStaleTargetEvent(tick, id, plantID uint64, x, y int) Event {
	return Event{Type: EventStaleTarget, Tick: tick, EntityID: id, TargetID: plantID, X: x, Y: y}
}

// NewPlantSpreadEvent records a new plant seeded from a parent.
func NewPlantSpreadEvent(tick, plantID uint64, x, y int) Event {
	return Event{Type: EventPlantSpread, Tick: tick, EntityID: plantID, X: x, Y: y}
}
