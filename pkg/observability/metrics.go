package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments for the case-management core.
type Metrics struct {
	// Event store metrics
	EventsAppended       metric.Int64Counter
	AggregateLoads       metric.Int64Counter
	ConcurrencyConflicts metric.Int64Counter
	SnapshotHits         metric.Int64Counter

	// Privacy engine metrics
	RedactionDecisions    metric.Int64Counter
	ReportingSuppressions metric.Int64Counter
	AccessDenials         metric.Int64Counter
	LedgerRedactionLevels metric.Int64Counter
}

// NewMetrics creates all metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.EventsAppended, err = meter.Int64Counter(
		"casevault.events.appended",
		metric.WithDescription("Total events appended to the event store"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events.appended: %w", err)
	}

	m.AggregateLoads, err = meter.Int64Counter(
		"casevault.aggregate.loads",
		metric.WithDescription("Total aggregate reconstructions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.loads: %w", err)
	}

	m.ConcurrencyConflicts, err = meter.Int64Counter(
		"casevault.events.concurrency_conflicts",
		metric.WithDescription("Appends rejected by the optimistic concurrency check"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events.concurrency_conflicts: %w", err)
	}

	m.SnapshotHits, err = meter.Int64Counter(
		"casevault.snapshot.hits",
		metric.WithDescription("Aggregate loads served from a snapshot checkpoint"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot.hits: %w", err)
	}

	m.RedactionDecisions, err = meter.Int64Counter(
		"casevault.privacy.redaction_decisions",
		metric.WithDescription("Demographic redaction decisions by strategy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating privacy.redaction_decisions: %w", err)
	}

	m.ReportingSuppressions, err = meter.Int64Counter(
		"casevault.privacy.reporting_suppressions",
		metric.WithDescription("Report fields suppressed under confidentiality rules"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating privacy.reporting_suppressions: %w", err)
	}

	m.AccessDenials, err = meter.Int64Counter(
		"casevault.privacy.access_denials",
		metric.WithDescription("Field accesses denied outright"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating privacy.access_denials: %w", err)
	}

	m.LedgerRedactionLevels, err = meter.Int64Counter(
		"casevault.ledger.redactions",
		metric.WithDescription("Ledger views rendered by redaction level"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ledger.redactions: %w", err)
	}

	return m, nil
}

// RecordAppend records a successful append of eventCount events.
func (m *Metrics) RecordAppend(ctx context.Context, eventCount int) {
	if m == nil || m.EventsAppended == nil {
		return
	}
	m.EventsAppended.Add(ctx, int64(eventCount))
}

// RecordConflict records an append rejected by the concurrency check.
func (m *Metrics) RecordConflict(ctx context.Context) {
	if m == nil || m.ConcurrencyConflicts == nil {
		return
	}
	m.ConcurrencyConflicts.Add(ctx, 1)
}

// RecordAggregateLoad records one aggregate reconstruction.
func (m *Metrics) RecordAggregateLoad(ctx context.Context) {
	if m == nil || m.AggregateLoads == nil {
		return
	}
	m.AggregateLoads.Add(ctx, 1)
}

// RecordSnapshotHit records a load served from a snapshot checkpoint.
func (m *Metrics) RecordSnapshotHit(ctx context.Context) {
	if m == nil || m.SnapshotHits == nil {
		return
	}
	m.SnapshotHits.Add(ctx, 1)
}

// RecordReportingSuppressions records fields excluded from a report render.
func (m *Metrics) RecordReportingSuppressions(ctx context.Context, fields int) {
	if m == nil || m.ReportingSuppressions == nil || fields == 0 {
		return
	}
	m.ReportingSuppressions.Add(ctx, int64(fields))
}

// RecordAccessDenial records a read denied outright.
func (m *Metrics) RecordAccessDenial(ctx context.Context) {
	if m == nil || m.AccessDenials == nil {
		return
	}
	m.AccessDenials.Add(ctx, 1)
}

// RecordRedaction records one redaction decision with its strategy label.
func (m *Metrics) RecordRedaction(ctx context.Context, strategy string) {
	if m == nil || m.RedactionDecisions == nil {
		return
	}
	m.RedactionDecisions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("strategy", strategy)))
}

// RecordLedgerRedaction records one ledger view render with its level label.
func (m *Metrics) RecordLedgerRedaction(ctx context.Context, level string) {
	if m == nil || m.LedgerRedactionLevels == nil {
		return
	}
	m.LedgerRedactionLevels.Add(ctx, 1,
		metric.WithAttributes(attribute.String("level", level)))
}
