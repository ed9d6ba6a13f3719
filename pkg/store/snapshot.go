package store

import "time"

// Snapshot is a cached replay-equivalent checkpoint of an aggregate at a
// specific version. Snapshots are an optimization only: the event stream
// remains the source of truth, and a loaded snapshot is always validated
// against the stream and followed by a tail replay.
type Snapshot struct {
	AggregateID   string
	AggregateType string
	Version       int64
	Data          []byte
	CreatedAt     time.Time
}

// SnapshotStore persists aggregate snapshots.
type SnapshotStore interface {
	// SaveSnapshot persists a snapshot, replacing any older one for the
	// same aggregate and version.
	SaveSnapshot(snapshot *Snapshot) error

	// GetLatestSnapshot retrieves the most recent snapshot for an
	// aggregate. Returns domain.ErrSnapshotNotFound if none exists.
	GetLatestSnapshot(aggregateID string) (*Snapshot, error)

	// DeleteOldSnapshots removes snapshots older than the given version.
	DeleteOldSnapshots(aggregateID string, olderThanVersion int64) error
}

// Snapshotter is implemented by aggregates that support snapshotting.
// RestoreSnapshot must leave the aggregate in exactly the state a full
// replay up to the snapshot's version would produce.
type Snapshotter interface {
	SnapshotState() ([]byte, error)
	RestoreSnapshot(data []byte, version int64) error
}
