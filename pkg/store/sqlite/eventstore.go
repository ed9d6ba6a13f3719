// Package sqlite provides SQLite-backed implementations of the event store
// and snapshot store using the pure Go driver (no CGo).
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/store"
)

// EventStore is a SQLite-based implementation of store.EventStore.
// It provides ACID guarantees for event persistence with no CGo dependencies.
type EventStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.EventStore = (*EventStore)(nil)

type eventStoreConfig struct {
	dsn          string
	maxOpenConns int
	maxIdleConns int
	walMode      bool
	autoMigrate  bool
}

func defaultEventStoreConfig() eventStoreConfig {
	return eventStoreConfig{
		dsn:          "casevault.db",
		maxOpenConns: 25,
		maxIdleConns: 5,
		walMode:      true,
		autoMigrate:  true,
	}
}

// EventStoreOption is a function that configures an EventStore.
type EventStoreOption func(*eventStoreConfig)

// WithDSN sets the data source name (file path or ":memory:" for in-memory).
func WithDSN(dsn string) EventStoreOption {
	return func(c *eventStoreConfig) {
		c.dsn = dsn
	}
}

// WithMemoryDatabase sets the database to an in-memory database.
func WithMemoryDatabase() EventStoreOption {
	return func(c *eventStoreConfig) {
		c.dsn = ":memory:"
	}
}

// WithMaxOpenConns sets the maximum number of open connections to the database.
func WithMaxOpenConns(n int) EventStoreOption {
	return func(c *eventStoreConfig) {
		c.maxOpenConns = n
	}
}

// WithMaxIdleConns sets the maximum number of idle connections in the pool.
func WithMaxIdleConns(n int) EventStoreOption {
	return func(c *eventStoreConfig) {
		c.maxIdleConns = n
	}
}

// WithWALMode enables write-ahead logging for better concurrency.
// Recommended for production use but not available for :memory: databases.
func WithWALMode(enabled bool) EventStoreOption {
	return func(c *eventStoreConfig) {
		c.walMode = enabled
	}
}

// WithAutoMigrate enables automatic migration on startup.
func WithAutoMigrate(enabled bool) EventStoreOption {
	return func(c *eventStoreConfig) {
		c.autoMigrate = enabled
	}
}

// NewEventStore creates a new SQLite event store with the given options.
//
// Example usage:
//
//	// Use defaults (casevault.db, WAL mode, auto-migrate)
//	es, err := sqlite.NewEventStore()
//
//	// In-memory database for testing
//	es, err := sqlite.NewEventStore(
//	    sqlite.WithMemoryDatabase(),
//	    sqlite.WithWALMode(false),
//	)
func NewEventStore(opts ...EventStoreOption) (*EventStore, error) {
	config := defaultEventStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite", config.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A :memory: database exists per connection, so the pool must be pinned
	// to a single connection or each query sees a different empty database.
	if config.dsn == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(config.maxOpenConns)
		db.SetMaxIdleConns(config.maxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	s := &EventStore{db: db}

	if config.walMode {
		if err := s.setWALMode(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	if config.autoMigrate {
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return s, nil
}

func (s *EventStore) setWALMode() error {
	_, err := s.db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;
	`)
	return err
}

// DB exposes the underlying handle so the snapshot store can share it.
func (s *EventStore) DB() *sql.DB { return s.db }

// AppendEvents appends events to an aggregate's stream atomically.
func (s *EventStore) AppendEvents(aggregateID string, expectedVersion int64, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int64
	err = tx.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to check current version: %w", err)
	}

	if currentVersion != expectedVersion {
		return domain.ErrConcurrencyConflict
	}

	for _, event := range events {
		metadataJSON, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO events
				(event_id, aggregate_id, aggregate_type, event_type, version, timestamp, data, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.AggregateID,
			event.AggregateType,
			event.EventType,
			event.Version,
			event.Timestamp.Unix(),
			event.Data,
			string(metadataJSON),
		)
		if err != nil {
			// A unique(aggregate_id, version) violation is a lost race with
			// another writer, surfaced the same way as a stale version check.
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return domain.ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	return tx.Commit()
}

// LoadEvents loads all events for an aggregate after afterVersion.
func (s *EventStore) LoadEvents(aggregateID string, afterVersion int64) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT position, event_id, aggregate_id, aggregate_type, event_type, version, timestamp, data, metadata
		FROM events
		WHERE aggregate_id = ? AND version > ?
		ORDER BY version ASC`,
		aggregateID, afterVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LoadAllEvents loads events from all aggregates in global append order.
func (s *EventStore) LoadAllEvents(fromPosition int64, limit int) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT position, event_id, aggregate_id, aggregate_type, event_type, version, timestamp, data, metadata
		FROM events
		WHERE position > ?
		ORDER BY position ASC`
	args := []any{fromPosition}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query all events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetAggregateVersion returns the current version of an aggregate, 0 if it
// doesn't exist.
func (s *EventStore) GetAggregateVersion(aggregateID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int64
	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?",
		aggregateID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query aggregate version: %w", err)
	}
	return version, nil
}

// Close closes the underlying database.
func (s *EventStore) Close() error {
	return s.db.Close()
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		var (
			event        domain.Event
			timestamp    int64
			metadataJSON string
		)
		if err := rows.Scan(
			&event.Position,
			&event.ID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&event.Version,
			&timestamp,
			&event.Data,
			&metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		event.Timestamp = time.Unix(timestamp, 0).UTC()
		if err := json.Unmarshal([]byte(metadataJSON), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode event metadata: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
