// Package memory provides an in-memory event store, primarily for tests and
// local development. All operations are safe for concurrent use.
package memory

import (
	"sync"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/store"
)

// EventStore is an in-memory implementation of store.EventStore.
type EventStore struct {
	mu       sync.RWMutex
	streams  map[string][]*domain.Event
	log      []*domain.Event
	position int64
}

var _ store.EventStore = (*EventStore)(nil)

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		streams: make(map[string][]*domain.Event),
	}
}

// AppendEvents appends events atomically with an optimistic-concurrency
// check against the stream's current version.
func (s *EventStore) AppendEvents(aggregateID string, expectedVersion int64, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	currentVersion := int64(0)
	if len(stream) > 0 {
		currentVersion = stream[len(stream)-1].Version
	}
	if currentVersion != expectedVersion {
		return domain.ErrConcurrencyConflict
	}

	for i, event := range events {
		if event.Version != currentVersion+int64(i)+1 {
			return domain.ErrInvalidVersion
		}
	}

	for _, event := range events {
		s.position++
		stored := *event
		stored.Position = s.position
		s.streams[aggregateID] = append(s.streams[aggregateID], &stored)
		s.log = append(s.log, &stored)
	}

	return nil
}

// LoadEvents returns the stream for an aggregate after afterVersion.
func (s *EventStore) LoadEvents(aggregateID string, afterVersion int64) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[aggregateID]
	events := make([]*domain.Event, 0, len(stream))
	for _, event := range stream {
		if event.Version > afterVersion {
			events = append(events, event)
		}
	}
	return events, nil
}

// LoadAllEvents returns events across all aggregates in append order.
func (s *EventStore) LoadAllEvents(fromPosition int64, limit int) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*domain.Event, 0)
	for _, event := range s.log {
		if event.Position <= fromPosition {
			continue
		}
		events = append(events, event)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// GetAggregateVersion returns the stream's current version, 0 if absent.
func (s *EventStore) GetAggregateVersion(aggregateID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[aggregateID]
	if len(stream) == 0 {
		return 0, nil
	}
	return stream[len(stream)-1].Version, nil
}

// Close is a no-op for the in-memory store.
func (s *EventStore) Close() error { return nil }
