package casemgmt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

func openCase(t *testing.T) *Case {
	t.Helper()
	c, err := Open(uuid.NewString(), "DV_ADVOCACY", PriorityHigh, "fleeing DV, needs housing", domain.EventMetadata{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return c
}

func TestOpenCase(t *testing.T) {
	c := openCase(t)
	if c.Status() != StatusOpen {
		t.Fatalf("expected OPEN, got %s", c.Status())
	}
	if !c.IsActive() {
		t.Fatal("new case must be active")
	}
	if c.ID() == "" || c.Version() != 1 {
		t.Fatalf("unexpected aggregate identity: id=%q version=%d", c.ID(), c.Version())
	}

	if _, err := Open("", "DV_ADVOCACY", PriorityLow, "", domain.EventMetadata{}); err == nil {
		t.Fatal("expected error for missing client id")
	}
}

func TestPrimaryAssignmentReplacement(t *testing.T) {
	c := openCase(t)

	if err := c.Assign("worker-1", "A. Rivera", "case_manager", AssignmentPrimary, "", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	first := c.CurrentPrimaryAssignment()
	if first == nil || first.AssigneeID != "worker-1" {
		t.Fatalf("expected worker-1 primary, got %+v", first)
	}

	if err := c.Assign("worker-2", "B. Chen", "case_manager", AssignmentPrimary, "caseload rebalance", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign second primary: %v", err)
	}

	current := c.CurrentPrimaryAssignment()
	if current == nil || current.AssigneeID != "worker-2" {
		t.Fatalf("expected worker-2 primary, got %+v", current)
	}
	if got := len(c.ActiveAssignments()); got != 1 {
		t.Fatalf("expected 1 active assignment, got %d", got)
	}
	if got := len(c.AssignmentHistory()); got != 2 {
		t.Fatalf("expected 2 assignments in history, got %d", got)
	}

	previous := c.AssignmentsForWorker("worker-1")
	if len(previous) != 1 || previous[0].IsActive() {
		t.Fatalf("expected worker-1 assignment ended, got %+v", previous)
	}
}

func TestEndAssignmentGuards(t *testing.T) {
	c := openCase(t)
	if err := c.Assign("worker-1", "", "", AssignmentSecondary, "", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	assignmentID := c.AssignmentHistory()[0].AssignmentID

	if err := c.EndAssignment(assignmentID, "left agency", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("end: %v", err)
	}

	var serr *domain.StateError
	if err := c.EndAssignment(assignmentID, "", "supervisor-1", domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error ending twice, got %v", err)
	}

	var verr *domain.ValidationError
	if err := c.EndAssignment(uuid.NewString(), "", "supervisor-1", domain.EventMetadata{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown assignment, got %v", err)
	}
}

func TestAssignClosedCaseRejected(t *testing.T) {
	c := openCase(t)
	if err := c.Close("services complete", domain.EventMetadata{}); err != nil {
		t.Fatalf("close: %v", err)
	}

	var serr *domain.StateError
	err := c.Assign("worker-1", "", "", AssignmentPrimary, "", "supervisor-1", domain.EventMetadata{})
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error assigning closed case, got %v", err)
	}
}

func TestDuplicateLinksRejected(t *testing.T) {
	c := openCase(t)
	enrollmentID := uuid.NewString()
	episodeID := uuid.NewString()
	planID := uuid.NewString()

	if err := c.LinkEnrollment(enrollmentID, "worker-1", "", domain.EventMetadata{}); err != nil {
		t.Fatalf("link enrollment: %v", err)
	}
	if err := c.LinkEpisode(episodeID, "worker-1", "", domain.EventMetadata{}); err != nil {
		t.Fatalf("link episode: %v", err)
	}
	if err := c.LinkSafetyPlan(planID, "worker-1", "", domain.EventMetadata{}); err != nil {
		t.Fatalf("link safety plan: %v", err)
	}

	var serr *domain.StateError
	if err := c.LinkEnrollment(enrollmentID, "worker-1", "", domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error on duplicate enrollment link, got %v", err)
	}
	if err := c.LinkEpisode(episodeID, "worker-1", "", domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error on duplicate episode link, got %v", err)
	}
	if err := c.LinkSafetyPlan(planID, "worker-1", "", domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error on duplicate safety plan link, got %v", err)
	}

	if len(c.LinkedEnrollments()) != 1 || len(c.LinkedEpisodes()) != 1 || len(c.LinkedSafetyPlans()) != 1 {
		t.Fatal("link counts changed on rejected duplicates")
	}
}

func TestStatusTransitions(t *testing.T) {
	c := openCase(t)

	if err := c.UpdateStatus(StatusInProgress, domain.EventMetadata{}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	before := c.Version()
	if err := c.UpdateStatus(StatusInProgress, domain.EventMetadata{}); err != nil {
		t.Fatalf("same-status update: %v", err)
	}
	if c.Version() != before {
		t.Fatal("same-status update must be a no-op")
	}

	var verr *domain.ValidationError
	if err := c.UpdateStatus(StatusClosed, domain.EventMetadata{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error routing close through UpdateStatus, got %v", err)
	}
}

func TestCloseOnce(t *testing.T) {
	c := openCase(t)
	if err := c.Close("services complete", domain.EventMetadata{}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.Status() != StatusClosed || c.ClosedAt() == nil || c.IsActive() {
		t.Fatal("close not recorded")
	}

	var serr *domain.StateError
	if err := c.Close("again", domain.EventMetadata{}); !errors.As(err, &serr) {
		t.Fatalf("expected state error closing twice, got %v", err)
	}
}

func TestPrimaryAssignmentOn(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := domain.Now
	domain.Now = func() time.Time { return start }
	t.Cleanup(func() { domain.Now = prev })

	c := openCase(t)
	if err := c.Assign("worker-1", "", "", AssignmentPrimary, "", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	domain.Now = func() time.Time { return start.AddDate(0, 0, 10) }
	if err := c.Assign("worker-2", "", "", AssignmentPrimary, "", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	mid := start.AddDate(0, 0, 5)
	assignment := c.PrimaryAssignmentOn(mid)
	if assignment == nil || assignment.AssigneeID != "worker-1" {
		t.Fatalf("expected worker-1 on %v, got %+v", mid, assignment)
	}

	later := start.AddDate(0, 0, 15)
	assignment = c.PrimaryAssignmentOn(later)
	if assignment == nil || assignment.AssigneeID != "worker-2" {
		t.Fatalf("expected worker-2 on %v, got %+v", later, assignment)
	}

	if got := c.PrimaryAssignmentOn(start.AddDate(0, 0, -1)); got != nil {
		t.Fatalf("expected no assignment before case opened, got %+v", got)
	}
}

func TestCaseReplay(t *testing.T) {
	original := openCase(t)
	if err := original.Assign("worker-1", "A. Rivera", "case_manager", AssignmentPrimary, "", "supervisor-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := original.AddNote("initial safety assessment complete", "worker-1", domain.EventMetadata{}); err != nil {
		t.Fatalf("note: %v", err)
	}
	enrollmentID := uuid.NewString()
	if err := original.LinkEnrollment(enrollmentID, "worker-1", "", domain.EventMetadata{}); err != nil {
		t.Fatalf("link: %v", err)
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

	if replayed.Status() != StatusOpen || replayed.Version() != original.Version() {
		t.Fatalf("replay mismatch: status=%s version=%d", replayed.Status(), replayed.Version())
	}
	if got := replayed.CurrentPrimaryAssignment(); got == nil || got.AssigneeID != "worker-1" {
		t.Fatalf("assignment lost in replay: %+v", got)
	}
	if len(replayed.Notes()) != 1 || len(replayed.LinkedEnrollments()) != 1 {
		t.Fatal("notes or links lost in replay")
	}
}
