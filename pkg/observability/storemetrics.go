package observability

import (
	"context"
	"errors"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/store"
)

// InstrumentedEventStore decorates an event store so appends, loads, and
// optimistic-concurrency rejections record on the core metrics. It wraps
// any store.EventStore and is transparent to callers.
type InstrumentedEventStore struct {
	inner   store.EventStore
	metrics *Metrics
}

// NewInstrumentedEventStore wraps inner with metric recording.
func NewInstrumentedEventStore(inner store.EventStore, metrics *Metrics) *InstrumentedEventStore {
	return &InstrumentedEventStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedEventStore) AppendEvents(aggregateID string, expectedVersion int64, events []*domain.Event) error {
	err := s.inner.AppendEvents(aggregateID, expectedVersion, events)
	switch {
	case err == nil:
		s.metrics.RecordAppend(context.Background(), len(events))
	case errors.Is(err, domain.ErrConcurrencyConflict):
		s.metrics.RecordConflict(context.Background())
	}
	return err
}

func (s *InstrumentedEventStore) LoadEvents(aggregateID string, afterVersion int64) ([]*domain.Event, error) {
	s.metrics.RecordAggregateLoad(context.Background())
	return s.inner.LoadEvents(aggregateID, afterVersion)
}

func (s *InstrumentedEventStore) LoadAllEvents(fromPosition int64, limit int) ([]*domain.Event, error) {
	return s.inner.LoadAllEvents(fromPosition, limit)
}

func (s *InstrumentedEventStore) GetAggregateVersion(aggregateID string) (int64, error) {
	return s.inner.GetAggregateVersion(aggregateID)
}

func (s *InstrumentedEventStore) Close() error { return s.inner.Close() }

// InstrumentedSnapshotStore counts loads served from a snapshot
// checkpoint.
type InstrumentedSnapshotStore struct {
	inner   store.SnapshotStore
	metrics *Metrics
}

// NewInstrumentedSnapshotStore wraps inner with metric recording.
func NewInstrumentedSnapshotStore(inner store.SnapshotStore, metrics *Metrics) *InstrumentedSnapshotStore {
	return &InstrumentedSnapshotStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedSnapshotStore) SaveSnapshot(snapshot *store.Snapshot) error {
	return s.inner.SaveSnapshot(snapshot)
}

func (s *InstrumentedSnapshotStore) GetLatestSnapshot(aggregateID string) (*store.Snapshot, error) {
	snap, err := s.inner.GetLatestSnapshot(aggregateID)
	if err == nil {
		s.metrics.RecordSnapshotHit(context.Background())
	}
	return snap, err
}

func (s *InstrumentedSnapshotStore) DeleteOldSnapshots(aggregateID string, olderThanVersion int64) error {
	return s.inner.DeleteOldSnapshots(aggregateID, olderThanVersion)
}
