package projections_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/consent"
	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/projections"
	"github.com/shelterpoint/casevault/pkg/store"
	"github.com/shelterpoint/casevault/pkg/store/memory"
)

func newConsentFixture(t *testing.T) (*store.Repository[*consent.Consent], *memory.EventStore, *projections.ConsentLedger) {
	t.Helper()
	registry := domain.NewRegistry()
	consent.RegisterEvents(registry)
	eventStore := memory.NewEventStore()
	repo := store.NewRepository(eventStore, registry, consent.New)
	return repo, eventStore, projections.NewConsentLedger(registry)
}

func grantConsent(t *testing.T, repo *store.Repository[*consent.Consent], clientID string, consentType consent.Type) *consent.Consent {
	t.Helper()
	c, err := consent.Grant(consent.GrantCommand{
		ClientID:              clientID,
		Type:                  consentType,
		Purpose:               "coordinated entry referral",
		RecipientOrganization: "Harbor Light Services",
		GrantedBy:             "worker-1",
	}, domain.EventMetadata{PrincipalID: "worker-1"})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := repo.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}
	return c
}

func TestConsentLedgerCatchUp(t *testing.T) {
	repo, eventStore, ledger := newConsentFixture(t)
	clientID := uuid.NewString()

	granted := grantConsent(t, repo, clientID, consent.InformationSharing)
	revoked := grantConsent(t, repo, clientID, consent.ReferralSharing)
	if err := revoked.Revoke("worker-1", "client request", domain.EventMetadata{}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := repo.Save(revoked); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := ledger.CatchUp(eventStore, 2); err != nil {
		t.Fatalf("catch up: %v", err)
	}

	record, ok := ledger.Get(granted.ID())
	if !ok {
		t.Fatal("granted consent missing from view")
	}
	if record.Status != consent.StatusGranted || record.RecipientOrganization != "Harbor Light Services" {
		t.Fatalf("record wrong: %+v", record)
	}
	if record.ExpiresAt == nil {
		t.Fatal("information sharing consent must carry an expiry")
	}

	record, ok = ledger.Get(revoked.ID())
	if !ok || record.Status != consent.StatusRevoked || record.RevocationReason != "client request" {
		t.Fatalf("revocation not folded: %+v", record)
	}

	all := ledger.ForClient(clientID)
	if len(all) != 2 {
		t.Fatalf("expected 2 records for client, got %d", len(all))
	}
	active := ledger.ActiveForClient(clientID, time.Now())
	if len(active) != 1 || active[0].ConsentID != granted.ID() {
		t.Fatalf("active filter wrong: %+v", active)
	}

	// A second catch-up from the checkpoint is a no-op.
	before := ledger.LastPosition()
	if err := ledger.CatchUp(eventStore, 2); err != nil {
		t.Fatalf("second catch up: %v", err)
	}
	if ledger.LastPosition() != before {
		t.Fatal("checkpoint moved without new events")
	}
}

func TestConsentLedgerRedeliveryIsIdempotent(t *testing.T) {
	repo, eventStore, ledger := newConsentFixture(t)
	clientID := uuid.NewString()
	granted := grantConsent(t, repo, clientID, consent.InformationSharing)

	events, err := eventStore.LoadEvents(granted.ID(), 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 3; i++ {
		for _, event := range events {
			if err := ledger.Handle(event); err != nil {
				t.Fatalf("handle: %v", err)
			}
		}
	}

	if got := ledger.ForClient(clientID); len(got) != 1 {
		t.Fatalf("redelivery duplicated rows: %d", len(got))
	}
}

func TestConsentLedgerIgnoresForeignEvents(t *testing.T) {
	_, _, ledger := newConsentFixture(t)

	err := ledger.Handle(&domain.Event{
		ID:            domain.NewEventID(),
		AggregateID:   "client-1",
		AggregateType: "Client",
		EventType:     "client.Created",
		Version:       1,
		Data:          []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("foreign event must be ignored: %v", err)
	}
	if got := ledger.ForClient("client-1"); len(got) != 0 {
		t.Fatal("foreign event leaked into the view")
	}
}

func TestConsentLedgerExtension(t *testing.T) {
	repo, eventStore, ledger := newConsentFixture(t)
	clientID := uuid.NewString()
	granted := grantConsent(t, repo, clientID, consent.InformationSharing)

	newExpiry := time.Now().UTC().AddDate(2, 0, 0)
	if err := granted.Extend(newExpiry, "worker-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := repo.Save(granted); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := ledger.CatchUp(eventStore, 0); err != nil {
		t.Fatalf("catch up: %v", err)
	}
	record, ok := ledger.Get(granted.ID())
	if !ok || record.ExpiresAt == nil || !record.ExpiresAt.Equal(newExpiry) {
		t.Fatalf("extension not folded: %+v", record)
	}
}
