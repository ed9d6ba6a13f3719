package client

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/privacy"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	c, err := Create(Name{Given: "Maria", Family: "Santos"}, GenderFemale, nil, domain.EventMetadata{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func TestCreateRequiresName(t *testing.T) {
	_, err := Create(Name{}, GenderUnknown, nil, domain.EventMetadata{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateStartsActive(t *testing.T) {
	c := newClient(t)
	if c.Status() != StatusActive {
		t.Fatalf("expected ACTIVE, got %s", c.Status())
	}
	if c.ID() == "" {
		t.Fatal("expected id assigned by creation event")
	}
	if !c.IsActive() {
		t.Fatal("new client must be active")
	}
}

func TestMarkDeceasedIdempotent(t *testing.T) {
	c := newClient(t)
	died := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	if err := c.MarkDeceased(died, domain.EventMetadata{}); err != nil {
		t.Fatalf("mark deceased: %v", err)
	}
	if c.Status() != StatusInactive || !c.IsDeceased() {
		t.Fatalf("expected INACTIVE deceased, got %s", c.Status())
	}

	before := c.Version()
	if err := c.MarkDeceased(died, domain.EventMetadata{}); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if c.Version() != before {
		t.Fatal("second mark must not emit an event")
	}

	err := c.UpdateDemographics(Name{Given: "M", Family: "S"}, GenderFemale, nil, domain.EventMetadata{})
	var serr *domain.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error updating deceased client, got %v", err)
	}
}

func TestHouseholdMemberGuards(t *testing.T) {
	c := newClient(t)

	if err := c.AddHouseholdMember("member-1", "CHILD", domain.EventMetadata{}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	err := c.AddHouseholdMember("member-1", "CHILD", domain.EventMetadata{})
	var serr *domain.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error on duplicate member, got %v", err)
	}
	if err := c.AddHouseholdMember(c.ID(), "SELF", domain.EventMetadata{}); err == nil {
		t.Fatal("expected error linking client to own household entry")
	}
}

func TestSafeAtHomeToggle(t *testing.T) {
	c := newClient(t)

	if err := c.EnableSafeAtHome(domain.EventMetadata{}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !c.IsSafeAtHomeParticipant() {
		t.Fatal("expected Safe at Home participation")
	}

	before := c.Version()
	if err := c.EnableSafeAtHome(domain.EventMetadata{}); err != nil {
		t.Fatalf("second enable: %v", err)
	}
	if c.Version() != before {
		t.Fatal("second enable must not emit an event")
	}

	if err := c.DisableSafeAtHome(domain.EventMetadata{}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if c.IsSafeAtHomeParticipant() {
		t.Fatal("expected participation withdrawn")
	}
}

func TestStatusChangeNoOpWhenUnchanged(t *testing.T) {
	c := newClient(t)
	before := c.Version()
	if err := c.UpdateStatus(StatusActive, domain.EventMetadata{}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if c.Version() != before {
		t.Fatal("unchanged status must not emit an event")
	}
	if err := c.UpdateStatus(StatusSuspended, domain.EventMetadata{}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if c.Status() != StatusSuspended {
		t.Fatalf("expected SUSPENDED, got %s", c.Status())
	}
}

func caseWorkerContext(clientID string) *privacy.AccessContext {
	return privacy.NewAccessContext("worker-7",
		privacy.WithRoles(privacy.RoleCaseWorker),
		privacy.WithGrant(privacy.CategoryQuasiIdentifier, privacy.AccessConfidential),
		privacy.WithAssignedClients(clientID),
	)
}

func TestDemographicProfileFullDisclosureForAssignedWorker(t *testing.T) {
	c := newClient(t)
	if err := c.UpdateRace([]hmis.Race{hmis.RaceAsian, hmis.RaceWhite}, privacy.RaceFullDisclosure, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}
	if err := c.UpdateEthnicity(hmis.EthnicityHispanicLatino, privacy.EthnicityFull, domain.EventMetadata{}); err != nil {
		t.Fatalf("update ethnicity: %v", err)
	}

	profile, err := c.DemographicProfile(caseWorkerContext(c.ID()), privacy.PurposeCaseManagement, privacy.NewPolicy(), nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !profile.Included {
		t.Fatal("assigned worker must see demographics")
	}
	if len(profile.Races) != 2 {
		t.Fatalf("expected both races disclosed, got %v", profile.Races)
	}
	if profile.Ethnicity != hmis.EthnicityHispanicLatino {
		t.Fatalf("expected full ethnicity, got %s", profile.Ethnicity)
	}
}

func TestDemographicProfileHonorsClientDefaultStrategy(t *testing.T) {
	c := newClient(t)
	// The client asked for category-only disclosure even to staff.
	if err := c.UpdateRace([]hmis.Race{hmis.RaceAsian}, privacy.RaceCategoryOnly, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}

	profile, err := c.DemographicProfile(caseWorkerContext(c.ID()), privacy.PurposeCaseManagement, privacy.NewPolicy(), nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile.Races) != 1 || profile.Races[0] != hmis.RaceClientPrefersNotToAnswer {
		t.Fatalf("client default must tighten disclosure, got %v", profile.Races)
	}
}

func TestDemographicProfileAnonymousExcluded(t *testing.T) {
	c := newClient(t)
	profile, err := c.DemographicProfile(privacy.AnonymousContext(), privacy.PurposeDirectService, privacy.NewPolicy(), nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Included {
		t.Fatal("anonymous access must not include demographics")
	}
	if profile.Ethnicity != hmis.EthnicityDataNotCollected {
		t.Fatalf("expected DATA_NOT_COLLECTED, got %s", profile.Ethnicity)
	}
}

func TestDemographicProfileResearchAliased(t *testing.T) {
	c := newClient(t)
	if err := c.UpdateRace([]hmis.Race{hmis.RaceAsian}, privacy.RaceFullDisclosure, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}
	if err := c.UpdateEthnicity(hmis.EthnicityHispanicLatino, privacy.EthnicityFull, domain.EventMetadata{}); err != nil {
		t.Fatalf("update ethnicity: %v", err)
	}

	ctx := privacy.NewAccessContext("researcher-1",
		privacy.WithRoles(privacy.RoleResearcher),
		privacy.WithGrant(privacy.CategoryQuasiIdentifier, privacy.AccessRestricted),
	)
	aliaser := privacy.NewAliaser([]byte("agency-alias-key"))

	first, err := c.DemographicProfile(ctx, privacy.PurposeResearch, privacy.NewPolicy(), aliaser)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	second, err := c.DemographicProfile(ctx, privacy.PurposeResearch, privacy.NewPolicy(), aliaser)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}

	if len(first.Races) != 1 {
		t.Fatalf("expected single alias, got %v", first.Races)
	}
	if first.Races[0] == hmis.RaceAsian {
		t.Fatal("alias must never equal the actual response")
	}
	if first.Races[0] != second.Races[0] {
		t.Fatal("alias must be stable across calls")
	}
	if first.Ethnicity == hmis.EthnicityHispanicLatino {
		t.Fatal("aliased ethnicity must differ from the actual response")
	}
}

func TestDemographicProfileResearchWithoutAliaser(t *testing.T) {
	c := newClient(t)
	if err := c.UpdateRace([]hmis.Race{hmis.RaceAsian}, privacy.RaceFullDisclosure, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}
	if err := c.UpdateEthnicity(hmis.EthnicityHispanicLatino, privacy.EthnicityFull, domain.EventMetadata{}); err != nil {
		t.Fatalf("update ethnicity: %v", err)
	}

	ctx := privacy.NewAccessContext("researcher-1",
		privacy.WithRoles(privacy.RoleResearcher),
	)

	// No aliaser configured: the disclosure degrades to suppressed output
	// rather than failing.
	profile, err := c.DemographicProfile(ctx, privacy.PurposeResearch, privacy.NewPolicy(), nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile.Races) != 1 || profile.Races[0] != hmis.RaceDataNotCollected {
		t.Fatalf("expected suppressed races, got %v", profile.Races)
	}
	if profile.Ethnicity != hmis.EthnicityDataNotCollected {
		t.Fatalf("expected suppressed ethnicity, got %s", profile.Ethnicity)
	}
}

func TestReplayRebuildsClient(t *testing.T) {
	original := newClient(t)
	if err := original.UpdateRace([]hmis.Race{hmis.RaceWhite}, privacy.RaceGeneralized, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}
	if err := original.AddAddress(Address{Line1: "12 Shelter Way", City: "Portland", State: "OR", PostalCode: "97201", Confidential: true}, domain.EventMetadata{}); err != nil {
		t.Fatalf("add address: %v", err)
	}
	if err := original.EnableSafeAtHome(domain.EventMetadata{}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := original.RecordDVVictimStatus(true, domain.EventMetadata{}); err != nil {
		t.Fatalf("record dv: %v", err)
	}

	registry := domain.NewRegistry()
	RegisterEvents(registry)

	replayed := New()
	for _, event := range original.UncommittedEvents() {
		payload, err := registry.Decode(event)
		if err != nil {
			t.Fatalf("decode %s: %v", event.EventType, err)
		}
		if err := replayed.Replay(payload, event.Version); err != nil {
			t.Fatalf("replay %s: %v", event.EventType, err)
		}
	}

	if replayed.ID() != original.ID() {
		t.Fatal("id mismatch after replay")
	}
	if !replayed.IsSafeAtHomeParticipant() || !replayed.IsDVVictim() {
		t.Fatal("flags lost in replay")
	}
	if len(replayed.Addresses()) != 1 || !replayed.Addresses()[0].Confidential {
		t.Fatal("address lost in replay")
	}
	if replayed.Version() != original.Version() {
		t.Fatalf("version mismatch: %d vs %d", replayed.Version(), original.Version())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	original, err := Create(Name{Family: "Okafor", Given: "Ada"}, GenderFemale, nil, domain.EventMetadata{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := original.UpdateRace([]hmis.Race{hmis.RaceBlackAfricanAmerican}, privacy.RaceCategoryOnly, domain.EventMetadata{}); err != nil {
		t.Fatalf("update race: %v", err)
	}
	if err := original.AddHouseholdMember(uuid.NewString(), "child", domain.EventMetadata{}); err != nil {
		t.Fatalf("household: %v", err)
	}
	if err := original.EnableSafeAtHome(domain.EventMetadata{}); err != nil {
		t.Fatalf("enable: %v", err)
	}

	data, err := original.SnapshotState()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := New()
	if err := restored.RestoreSnapshot(data, original.Version()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.ID() != original.ID() || restored.Version() != original.Version() {
		t.Fatalf("identity mismatch: id=%s version=%d", restored.ID(), restored.Version())
	}
	if restored.Name() != original.Name() || restored.Status() != original.Status() {
		t.Fatal("demographics lost in snapshot round trip")
	}
	if !restored.IsSafeAtHomeParticipant() || len(restored.HouseholdMembers()) != 1 {
		t.Fatal("state lost in snapshot round trip")
	}

	// A restored aggregate keeps accepting commands from the checkpoint.
	if err := restored.RecordDVVictimStatus(true, domain.EventMetadata{}); err != nil {
		t.Fatalf("command after restore: %v", err)
	}
	if restored.Version() != original.Version()+1 {
		t.Fatalf("version did not advance from checkpoint: %d", restored.Version())
	}
}
