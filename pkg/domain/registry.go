package domain

import (
	"encoding/json"
	"fmt"
)

// Registry maps event type names to payload factories so stored events can
// be decoded back into their concrete payload types during replay.
type Registry struct {
	factories map[string]func() Payload
}

// NewRegistry creates an empty payload registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Payload)}
}

// Register binds an event type name to a payload factory. Registering the
// same name twice panics: two payloads claiming one wire name is a
// programming error that would corrupt replay.
func (r *Registry) Register(eventType string, factory func() Payload) {
	if _, dup := r.factories[eventType]; dup {
		panic(fmt.Sprintf("event type %q registered twice", eventType))
	}
	r.factories[eventType] = factory
}

// Decode unmarshals an event's payload into its registered concrete type.
// An unregistered event type is an UnhandledEventError: the running code is
// older than the event history and must fail loudly.
func (r *Registry) Decode(event *Event) (Payload, error) {
	factory, ok := r.factories[event.EventType]
	if !ok {
		return nil, NewUnhandledEventError(event.AggregateType, event.EventType)
	}
	payload := factory()
	if err := json.Unmarshal(event.Data, payload); err != nil {
		return nil, fmt.Errorf("failed to decode event %s (%s): %w", event.ID, event.EventType, err)
	}
	return payload, nil
}

// Knows reports whether the registry can decode the given event type.
func (r *Registry) Knows(eventType string) bool {
	_, ok := r.factories[eventType]
	return ok
}
