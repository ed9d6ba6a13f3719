package store

import (
	"github.com/shelterpoint/casevault/pkg/domain"
)

// EventStore defines the interface for persisting and retrieving events.
// Implementations provide per-aggregate-stream storage with optimistic
// concurrency: appends are all-or-nothing and versions are contiguous with
// no gaps and no duplicates.
type EventStore interface {
	// AppendEvents appends events to an aggregate's stream atomically.
	// Returns domain.ErrConcurrencyConflict if expectedVersion doesn't match
	// the stream's current version. On success the events are durable and
	// visible to all subsequent LoadEvents calls.
	AppendEvents(aggregateID string, expectedVersion int64, events []*domain.Event) error

	// LoadEvents loads all events for an aggregate after afterVersion, in
	// version order. Returns an empty slice if the aggregate has never been
	// created.
	LoadEvents(aggregateID string, afterVersion int64) ([]*domain.Event, error)

	// LoadAllEvents loads events from all aggregates in append order, for
	// projection building. fromPosition is the global position to resume
	// from; limit bounds the page size (0 = no limit).
	LoadAllEvents(fromPosition int64, limit int) ([]*domain.Event, error)

	// GetAggregateVersion returns the current version of an aggregate.
	// Returns 0 if the aggregate doesn't exist.
	GetAggregateVersion(aggregateID string) (int64, error)

	// Close closes the event store and releases resources.
	Close() error
}
