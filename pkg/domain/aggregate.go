package domain

import (
	"encoding/json"
	"fmt"
)

// Aggregate defines the interface that all aggregates must implement.
type Aggregate interface {
	// ID returns the unique identifier of the aggregate.
	ID() string

	// Type returns the type name of the aggregate.
	Type() string

	// Version returns the current version of the aggregate.
	Version() int64

	// Replay applies a historical event to the aggregate's state and sets
	// the version absolutely. Used by repositories during reconstruction;
	// never touches the pending buffer.
	Replay(payload Payload, version int64) error

	// UncommittedEvents returns events applied but not yet persisted.
	UncommittedEvents() []*Event

	// ClearUncommittedEvents clears the pending buffer after persistence.
	ClearUncommittedEvents()
}

// AggregateRoot provides base functionality for all aggregates.
// Embed it in aggregate implementations and bind the aggregate's event
// handler at construction time.
//
// Two mutation paths exist and must stay distinct:
//
//   - Apply is for command methods producing new facts: it routes the
//     payload through the handler, buffers the resulting event, and
//     increments the version.
//   - Replay is for reconstruction from history: it routes through the same
//     handler but sets the version absolutely and never buffers.
//
// The handler must be a pure, deterministic function of (current state,
// event): replay of the same event sequence from empty state always yields
// identical state. Invariants are enforced in command methods before Apply,
// never in the handler, since replay must always succeed on historical,
// previously validated facts.
type AggregateRoot struct {
	id            string
	aggregateType string
	version       int64
	pending       []*Event
	handler       func(Payload) error
}

// NewAggregateRoot creates a root for the given aggregate type with its
// event handler bound.
func NewAggregateRoot(aggregateType string, handler func(Payload) error) AggregateRoot {
	return AggregateRoot{
		aggregateType: aggregateType,
		handler:       handler,
	}
}

// ID returns the aggregate's unique identifier.
func (a *AggregateRoot) ID() string { return a.id }

// SetID records the aggregate identity. Called by the handler when folding
// the creation event, so identity always originates from the event stream.
func (a *AggregateRoot) SetID(id string) { a.id = id }

// Type returns the aggregate's type name.
func (a *AggregateRoot) Type() string { return a.aggregateType }

// Version returns the aggregate's current version.
func (a *AggregateRoot) Version() int64 { return a.version }

// UncommittedEvents returns events that haven't been persisted yet.
func (a *AggregateRoot) UncommittedEvents() []*Event { return a.pending }

// ClearUncommittedEvents clears the pending buffer.
func (a *AggregateRoot) ClearUncommittedEvents() { a.pending = nil }

// RestoreVersion sets the version absolutely during snapshot
// restoration. For use by Snapshotter implementations only; the tail of
// the event stream is replayed on top afterwards.
func (a *AggregateRoot) RestoreVersion(version int64) { a.version = version }

// Apply applies a new event to the aggregate. For use by command methods
// only, after all invariant checks have passed.
func (a *AggregateRoot) Apply(payload Payload, metadata EventMetadata) error {
	if err := a.handler(payload); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", payload.EventType(), err)
	}

	a.pending = append(a.pending, &Event{
		ID:            NewEventID(),
		AggregateID:   a.id,
		AggregateType: a.aggregateType,
		EventType:     payload.EventType(),
		Version:       a.version + 1,
		Timestamp:     Now(),
		Data:          data,
		Metadata:      metadata,
	})
	a.version++

	return nil
}

// Replay applies a historical event during reconstruction. The version is
// set absolutely rather than incremented, tolerating any gap-free replay
// ordering.
func (a *AggregateRoot) Replay(payload Payload, version int64) error {
	if err := a.handler(payload); err != nil {
		return err
	}
	a.version = version
	return nil
}
