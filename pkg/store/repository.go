package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/runner"
)

// EventPublisher publishes committed events to downstream consumers
// (projections, audit trail). Satisfied by messaging.EventBus.
type EventPublisher interface {
	Publish(events []*domain.Event) error
}

// Repository provides event-sourced persistence for one aggregate type.
// Load replays the full event history through the aggregate's handler;
// Save appends the pending buffer with an optimistic-concurrency check.
type Repository[T domain.Aggregate] struct {
	store     EventStore
	registry  *domain.Registry
	factory   func() T
	snapshots SnapshotStore
	publisher EventPublisher
	logger    runner.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption[T domain.Aggregate] func(*Repository[T])

// WithSnapshots enables snapshot-accelerated loads. The snapshot is treated
// as a cached replay checkpoint: the event tail after the snapshot version
// is always replayed on top.
func WithSnapshots[T domain.Aggregate](snapshots SnapshotStore) RepositoryOption[T] {
	return func(r *Repository[T]) { r.snapshots = snapshots }
}

// WithPublisher publishes events after each successful save.
func WithPublisher[T domain.Aggregate](publisher EventPublisher) RepositoryOption[T] {
	return func(r *Repository[T]) { r.publisher = publisher }
}

// WithLogger surfaces non-fatal repository errors, like a failed
// best-effort snapshot write. Defaults to a no-op logger.
func WithLogger[T domain.Aggregate](logger runner.Logger) RepositoryOption[T] {
	return func(r *Repository[T]) { r.logger = logger }
}

// NewRepository creates a repository for the aggregate type produced by
// factory. The registry must know every event type the aggregate emits.
func NewRepository[T domain.Aggregate](
	eventStore EventStore,
	registry *domain.Registry,
	factory func() T,
	opts ...RepositoryOption[T],
) *Repository[T] {
	r := &Repository[T]{
		store:    eventStore,
		registry: registry,
		factory:  factory,
		logger:   runner.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NextID generates a fresh globally-unique identifier for new aggregates.
func (r *Repository[T]) NextID() string {
	return uuid.NewString()
}

// Load reconstructs an aggregate by replaying its event history.
// Returns domain.ErrAggregateNotFound if no events exist for the id.
func (r *Repository[T]) Load(id string) (T, error) {
	var zero T

	aggregate := r.factory()
	afterVersion := int64(0)

	if r.snapshots != nil {
		if snapshotter, ok := any(aggregate).(Snapshotter); ok {
			snap, err := r.snapshots.GetLatestSnapshot(id)
			switch {
			case err == nil:
				if err := snapshotter.RestoreSnapshot(snap.Data, snap.Version); err != nil {
					return zero, fmt.Errorf("failed to restore snapshot: %w", err)
				}
				afterVersion = snap.Version
			case errors.Is(err, domain.ErrSnapshotNotFound):
				// fall through to full replay
			default:
				return zero, fmt.Errorf("failed to load snapshot: %w", err)
			}
		}
	}

	events, err := r.store.LoadEvents(id, afterVersion)
	if err != nil {
		return zero, fmt.Errorf("failed to load events: %w", err)
	}
	if len(events) == 0 && afterVersion == 0 {
		return zero, domain.ErrAggregateNotFound
	}

	for _, event := range events {
		payload, err := r.registry.Decode(event)
		if err != nil {
			return zero, err
		}
		if err := aggregate.Replay(payload, event.Version); err != nil {
			return zero, fmt.Errorf("failed to replay event %s: %w", event.ID, err)
		}
	}

	return aggregate, nil
}

// Save persists an aggregate's uncommitted events and clears the pending
// buffer. The expected version is the aggregate's version before the new
// events, so a concurrent writer forces domain.ErrConcurrencyConflict.
func (r *Repository[T]) Save(aggregate T) error {
	pending := aggregate.UncommittedEvents()
	if len(pending) == 0 {
		return nil
	}

	expectedVersion := aggregate.Version() - int64(len(pending))
	if err := r.store.AppendEvents(aggregate.ID(), expectedVersion, pending); err != nil {
		return err
	}
	aggregate.ClearUncommittedEvents()

	if r.publisher != nil {
		if err := r.publisher.Publish(pending); err != nil {
			return fmt.Errorf("events committed but publish failed: %w", err)
		}
	}

	if r.snapshots != nil {
		if snapshotter, ok := any(aggregate).(Snapshotter); ok {
			data, err := snapshotter.SnapshotState()
			if err == nil {
				err = r.snapshots.SaveSnapshot(&Snapshot{
					AggregateID:   aggregate.ID(),
					AggregateType: aggregate.Type(),
					Version:       aggregate.Version(),
					Data:          data,
					CreatedAt:     domain.Now(),
				})
			}
			if err != nil {
				// Best effort: the events are already durable and the next
				// load falls back to a full replay.
				r.logger.Error("snapshot write failed",
					"aggregate_id", aggregate.ID(),
					"aggregate_type", aggregate.Type(),
					"version", aggregate.Version(),
					"error", err)
			}
		}
	}

	return nil
}

// Exists checks if an aggregate exists in the event store.
func (r *Repository[T]) Exists(id string) (bool, error) {
	version, err := r.store.GetAggregateVersion(id)
	if err != nil {
		return false, fmt.Errorf("failed to check aggregate existence: %w", err)
	}
	return version > 0, nil
}
