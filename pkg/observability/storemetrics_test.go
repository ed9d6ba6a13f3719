package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/observability"
	"github.com/shelterpoint/casevault/pkg/store"
	"github.com/shelterpoint/casevault/pkg/store/memory"
)

var (
	_ store.EventStore    = (*observability.InstrumentedEventStore)(nil)
	_ store.SnapshotStore = (*observability.InstrumentedSnapshotStore)(nil)
)

func newTestMetrics(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := observability.NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return metrics, reader
}

// counterValue sums the data points of one cumulative counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 counter", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func storeEvent(aggregateID string, version int64) *domain.Event {
	return &domain.Event{
		ID:            domain.NewEventID(),
		AggregateID:   aggregateID,
		AggregateType: "Client",
		EventType:     "client.Created",
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Data:          []byte(`{}`),
	}
}

func TestInstrumentedEventStore(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	eventStore := observability.NewInstrumentedEventStore(memory.NewEventStore(), metrics)

	err := eventStore.AppendEvents("agg-1", 0, []*domain.Event{
		storeEvent("agg-1", 1),
		storeEvent("agg-1", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counterValue(t, reader, "casevault.events.appended"))

	// A stale expected version records a conflict, not an append.
	err = eventStore.AppendEvents("agg-1", 0, []*domain.Event{storeEvent("agg-1", 1)})
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, int64(2), counterValue(t, reader, "casevault.events.appended"))
	assert.Equal(t, int64(1), counterValue(t, reader, "casevault.events.concurrency_conflicts"))

	events, err := eventStore.LoadEvents("agg-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), counterValue(t, reader, "casevault.aggregate.loads"))
}

type memorySnapshotStore struct {
	snaps map[string]*store.Snapshot
}

func (m *memorySnapshotStore) SaveSnapshot(snapshot *store.Snapshot) error {
	m.snaps[snapshot.AggregateID] = snapshot
	return nil
}

func (m *memorySnapshotStore) GetLatestSnapshot(aggregateID string) (*store.Snapshot, error) {
	snap, ok := m.snaps[aggregateID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memorySnapshotStore) DeleteOldSnapshots(string, int64) error { return nil }

func TestInstrumentedSnapshotStore(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	snapshots := observability.NewInstrumentedSnapshotStore(
		&memorySnapshotStore{snaps: make(map[string]*store.Snapshot)}, metrics)

	_, err := snapshots.GetLatestSnapshot("missing")
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.Equal(t, int64(0), counterValue(t, reader, "casevault.snapshot.hits"))

	require.NoError(t, snapshots.SaveSnapshot(&store.Snapshot{
		AggregateID:   "agg-1",
		AggregateType: "Client",
		Version:       5,
		Data:          []byte(`{}`),
		CreatedAt:     time.Now().UTC(),
	}))

	snap, err := snapshots.GetLatestSnapshot("agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.Version)
	assert.Equal(t, int64(1), counterValue(t, reader, "casevault.snapshot.hits"))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *observability.Metrics
	ctx := context.Background()

	metrics.RecordAppend(ctx, 3)
	metrics.RecordConflict(ctx)
	metrics.RecordAggregateLoad(ctx)
	metrics.RecordSnapshotHit(ctx)
	metrics.RecordReportingSuppressions(ctx, 2)
	metrics.RecordAccessDenial(ctx)
	metrics.RecordRedaction(ctx, "research")
	metrics.RecordLedgerRedaction(ctx, "FULL")
}
