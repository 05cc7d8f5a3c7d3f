package events

import "time"

// DomainEvent is something that happened to an aggregate and that other parts
// of the system may react to asynchronously.
type DomainEvent interface {
	AggregateID() string
	EventType() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all domain events
type BaseEvent struct {
	ID   string    `json:"aggregate_id"`
	Type string    `json:"event_type"`
	At   time.Time `json:"occurred_at"`
}

func (e BaseEvent) AggregateID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.At
}

// HandlerFunc reacts to one event. Errors are logged by the dispatcher.
type HandlerFunc func(event DomainEvent) error

// Publisher is what use cases depend on.
type Publisher interface {
	Publish(event DomainEvent) error
}
