package intake

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := domain.Now
	domain.Now = func() time.Time { return at }
	t.Cleanup(func() { domain.Now = prev })
}

func newContact(t *testing.T) *Contact {
	t.Helper()
	c, err := Create("bluebird", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		ReferralHotline, "intake worker A", 0, domain.EventMetadata{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func TestCreateAppliesDefaultTTL(t *testing.T) {
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	c := newContact(t)
	if !c.ExpiresAt().Equal(now.Add(DefaultTTL)) {
		t.Fatalf("expected 30-day TTL, got %v", c.ExpiresAt())
	}
	if c.CurrentStep() != 1 {
		t.Fatalf("expected step 1, got %d", c.CurrentStep())
	}
	if c.IsExpired() || c.IsPromoted() {
		t.Fatal("fresh contact must be neither expired nor promoted")
	}
}

func TestWorkflowStepData(t *testing.T) {
	c := newContact(t)

	if err := c.UpdateWorkflowData(2, StepData{"housing_status": "fleeing"}, domain.EventMetadata{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.UpdateWorkflowData(3, StepData{"safety_concerns": true}, domain.EventMetadata{}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if c.CurrentStep() != 3 {
		t.Fatalf("expected step 3, got %d", c.CurrentStep())
	}
	if c.StepData(2)["housing_status"] != "fleeing" {
		t.Fatalf("step 2 data lost: %v", c.StepData(2))
	}
	if len(c.StepData(7)) != 0 {
		t.Fatal("unvisited step must return empty data")
	}

	if err := c.UpdateWorkflowData(0, nil, domain.EventMetadata{}); err == nil {
		t.Fatal("expected error for non-positive step")
	}
}

func TestPromotionIsTerminal(t *testing.T) {
	c := newContact(t)
	clientID := uuid.NewString()

	if err := c.MarkPromoted(clientID, domain.EventMetadata{}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !c.IsPromoted() || c.PromotedClientID() != clientID {
		t.Fatal("promotion not recorded")
	}

	var serr *domain.StateError
	if err := c.MarkPromoted(uuid.NewString(), domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error promoting twice, got %v", err)
	}
	if err := c.UpdateWorkflowData(4, nil, domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error updating promoted contact, got %v", err)
	}
	if serr.Error() != "cannot update a promoted pre-intake contact" {
		t.Fatalf("guard message mangled: %q", serr.Error())
	}
	if err := c.MarkExpired(domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error expiring promoted contact, got %v", err)
	}
}

func TestExpiryIsTerminal(t *testing.T) {
	c := newContact(t)

	if err := c.MarkExpired(domain.EventMetadata{}); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if !c.IsExpired() {
		t.Fatal("expected expired contact")
	}

	before := c.Version()
	if err := c.MarkExpired(domain.EventMetadata{}); err != nil {
		t.Fatalf("second expire: %v", err)
	}
	if c.Version() != before {
		t.Fatal("second expire must be a no-op")
	}

	var serr *domain.StateError
	if err := c.MarkPromoted(uuid.NewString(), domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error promoting expired contact, got %v", err)
	}
	if err := c.UpdateContactInfo("nightjar", time.Now(), ReferralWalkIn, domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error updating expired contact, got %v", err)
	}
	if serr.Error() != "cannot update an expired pre-intake contact" {
		t.Fatalf("guard message mangled: %q", serr.Error())
	}
}

func TestTTLExpiryWithoutEvent(t *testing.T) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	fixedClock(t, created)
	c := newContact(t)

	fixedClock(t, created.Add(DefaultTTL+time.Hour))
	if !c.IsExpired() {
		t.Fatal("contact past its TTL must report expired")
	}
}

func TestIntakeReplay(t *testing.T) {
	original := newContact(t)
	if err := original.UpdateWorkflowData(2, StepData{"housing_status": "doubled_up"}, domain.EventMetadata{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	clientID := uuid.NewString()
	if err := original.MarkPromoted(clientID, domain.EventMetadata{}); err != nil {
		t.Fatalf("promote: %v", err)
	}

	registry := domain.NewRegistry()
	RegisterEvents(registry)

	replayed := New()
	for _, event := range original.UncommittedEvents() {
		payload, err := registry.Decode(event)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if err := replayed.Replay(payload, event.Version); err != nil {
			t.Fatalf("replay: %v", err)
		}
	}

	if !replayed.IsPromoted() || replayed.PromotedClientID() != clientID {
		t.Fatal("promotion lost in replay")
	}
	if replayed.StepData(2)["housing_status"] != "doubled_up" {
		t.Fatal("workflow data lost in replay")
	}
}
