package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/store"
)

// SnapshotStore is a SQLite-based implementation of store.SnapshotStore.
// It is typically constructed over the same database as the event store.
type SnapshotStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a snapshot store over an existing database
// handle. The snapshots table is created by the event store migrations.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveSnapshot persists a snapshot, replacing any existing snapshot for the
// same aggregate and version.
func (s *SnapshotStore) SaveSnapshot(snapshot *store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO snapshots (aggregate_id, aggregate_type, version, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (aggregate_id, version) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at`,
		snapshot.AggregateID,
		snapshot.AggregateType,
		snapshot.Version,
		snapshot.Data,
		snapshot.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot for an aggregate.
func (s *SnapshotStore) GetLatestSnapshot(aggregateID string) (*store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		snapshot  store.Snapshot
		createdAt int64
	)
	err := s.db.QueryRow(`
		SELECT aggregate_id, aggregate_type, version, data, created_at
		FROM snapshots
		WHERE aggregate_id = ?
		ORDER BY version DESC
		LIMIT 1`,
		aggregateID,
	).Scan(
		&snapshot.AggregateID,
		&snapshot.AggregateType,
		&snapshot.Version,
		&snapshot.Data,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	snapshot.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &snapshot, nil
}

// DeleteOldSnapshots removes snapshots older than the given version.
func (s *SnapshotStore) DeleteOldSnapshots(aggregateID string, olderThanVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"DELETE FROM snapshots WHERE aggregate_id = ? AND version < ?",
		aggregateID, olderThanVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
