// Package projections builds denormalized read models from the event
// stream. Projections consume events either live from the event bus or
// in batches from the event store's global log, and tolerate
// at-least-once delivery.
package projections

import (
	"sort"
	"sync"
	"time"

	"github.com/shelterpoint/casevault/pkg/consent"
	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/messaging"
	"github.com/shelterpoint/casevault/pkg/store"
)

// ConsentRecord is one row of the consent ledger view.
type ConsentRecord struct {
	ConsentID             string
	ClientID              string
	Type                  consent.Type
	Purpose               string
	RecipientOrganization string
	Status                consent.Status
	GrantedBy             string
	GrantedAt             time.Time
	ExpiresAt             *time.Time
	RevokedAt             *time.Time
	RevocationReason      string
	VAWAProtected         bool
	Limitations           string

	version int64
}

// Active reports whether the consent is granted and unexpired at the
// given instant.
func (r ConsentRecord) Active(at time.Time) bool {
	if r.Status != consent.StatusGranted {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(at)
}

// ConsentLedger is an in-memory read model of every consent's current
// state, keyed by consent and by client. Event application is
// idempotent: a redelivered event at or below the row's version is a
// no-op.
type ConsentLedger struct {
	mu           sync.RWMutex
	registry     *domain.Registry
	rows         map[string]*ConsentRecord
	byClient     map[string][]string
	lastPosition int64
}

// NewConsentLedger creates an empty ledger. The registry must know the
// consent event payloads.
func NewConsentLedger(registry *domain.Registry) *ConsentLedger {
	return &ConsentLedger{
		registry: registry,
		rows:     make(map[string]*ConsentRecord),
		byClient: make(map[string][]string),
	}
}

// Name returns the projection name, used for checkpoints and logs.
func (l *ConsentLedger) Name() string { return "consent_ledger" }

// Handle folds one event into the view. Non-consent events are ignored
// so the handler can sit on a wide subscription.
func (l *ConsentLedger) Handle(event *domain.Event) error {
	if event.AggregateType != consent.AggregateType {
		return nil
	}

	payload, err := l.registry.Decode(event)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.rows[event.AggregateID]
	if row != nil && event.Version <= row.version {
		return nil
	}

	switch e := payload.(type) {
	case *consent.Granted:
		row = &ConsentRecord{
			ConsentID:             e.ConsentID,
			ClientID:              e.ClientID,
			Type:                  e.Type,
			Purpose:               e.Purpose,
			RecipientOrganization: e.RecipientOrganization,
			Status:                consent.StatusGranted,
			GrantedBy:             e.GrantedBy,
			GrantedAt:             e.GrantedAt,
			ExpiresAt:             e.ExpiresAt,
			VAWAProtected:         e.VAWAProtected,
			Limitations:           e.Limitations,
		}
		l.rows[e.ConsentID] = row
		l.byClient[e.ClientID] = append(l.byClient[e.ClientID], e.ConsentID)

	case *consent.Revoked:
		if row == nil {
			return nil
		}
		row.Status = consent.StatusRevoked
		revokedAt := e.RevokedAt
		row.RevokedAt = &revokedAt
		row.RevocationReason = e.Reason

	case *consent.Updated:
		if row == nil {
			return nil
		}
		row.Limitations = e.NewLimitations

	case *consent.Extended:
		if row == nil {
			return nil
		}
		newExpiresAt := e.NewExpiresAt
		row.ExpiresAt = &newExpiresAt

	case *consent.Expired:
		if row == nil {
			return nil
		}
		row.Status = consent.StatusExpired
	}

	if row != nil {
		row.version = event.Version
	}
	if event.Position > l.lastPosition {
		l.lastPosition = event.Position
	}
	return nil
}

// CatchUp replays the store's global log from the last processed
// position. batchSize bounds each page (0 = everything at once).
func (l *ConsentLedger) CatchUp(eventStore store.EventStore, batchSize int) error {
	for {
		l.mu.RLock()
		from := l.lastPosition
		l.mu.RUnlock()

		events, err := eventStore.LoadAllEvents(from, batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for _, event := range events {
			if err := l.Handle(event); err != nil {
				return err
			}
			// Positions advance even past non-consent events, so the
			// next page resumes after everything already seen.
			l.mu.Lock()
			if event.Position > l.lastPosition {
				l.lastPosition = event.Position
			}
			l.mu.Unlock()
		}
		if batchSize == 0 {
			return nil
		}
	}
}

// Subscribe attaches the projection to live consent events on the bus.
func (l *ConsentLedger) Subscribe(bus messaging.EventBus) (messaging.Subscription, error) {
	return bus.Subscribe(messaging.EventFilter{
		AggregateTypes: []string{consent.AggregateType},
	}, l.Handle)
}

// Get returns the record for one consent.
func (l *ConsentLedger) Get(consentID string) (ConsentRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	row, ok := l.rows[consentID]
	if !ok {
		return ConsentRecord{}, false
	}
	return *row, true
}

// ForClient returns all consent records for a client, oldest grant
// first.
func (l *ConsentLedger) ForClient(clientID string) []ConsentRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byClient[clientID]
	out := make([]ConsentRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.rows[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out
}

// ActiveForClient returns the client's consents that are granted and
// unexpired at the given instant.
func (l *ConsentLedger) ActiveForClient(clientID string, at time.Time) []ConsentRecord {
	all := l.ForClient(clientID)
	out := make([]ConsentRecord, 0, len(all))
	for _, record := range all {
		if record.Active(at) {
			out = append(out, record)
		}
	}
	return out
}

// LastPosition returns the highest global position folded so far.
func (l *ConsentLedger) LastPosition() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastPosition
}
