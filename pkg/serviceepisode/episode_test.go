package serviceepisode

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
)

func newEpisode(t *testing.T) *Episode {
	t.Helper()
	e, err := Create(uuid.NewString(), uuid.NewString(), "program-1",
		hmis.ServiceCounseling, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 60,
		"provider-1", "J. Alvarez", hmis.FundingHHSFVPSA, "weekly counseling session",
		true, "worker-7", domain.EventMetadata{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return e
}

func TestCreateStartsScheduled(t *testing.T) {
	e := newEpisode(t)
	if e.Status() != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", e.Status())
	}
	if !e.IsConfidential() {
		t.Fatal("expected confidential episode")
	}
}

func TestStartOnlyFromScheduled(t *testing.T) {
	e := newEpisode(t)
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	if err := e.Start(start, "main office", domain.EventMetadata{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !e.IsInProgress() {
		t.Fatalf("expected IN_PROGRESS, got %s", e.Status())
	}

	err := e.Start(start, "main office", domain.EventMetadata{})
	var serr *domain.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error starting twice, got %v", err)
	}
}

func TestCompleteComputesDuration(t *testing.T) {
	e := newEpisode(t)
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	if err := e.Start(start, "main office", domain.EventMetadata{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.Complete(end, "client engaged well", StatusCompleted, "", domain.EventMetadata{}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if e.ActualDurationMinutes() != 45 {
		t.Fatalf("expected 45 minutes, got %d", e.ActualDurationMinutes())
	}
	if !e.IsCompleted() {
		t.Fatalf("expected COMPLETED, got %s", e.Status())
	}
}

func TestCompleteGuards(t *testing.T) {
	e := newEpisode(t)
	end := time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC)

	err := e.Complete(end, "", StatusCompleted, "", domain.EventMetadata{})
	var serr *domain.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error completing unstarted episode, got %v", err)
	}

	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	if err := e.Start(start, "", domain.EventMetadata{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := e.Complete(end, "", StatusInProgress, "", domain.EventMetadata{}); err == nil {
		t.Fatal("expected error for non-terminal completion status")
	}
	if err := e.Complete(start.Add(-time.Minute), "", StatusCompleted, "", domain.EventMetadata{}); err == nil {
		t.Fatal("expected error for end before start")
	}

	if err := e.Complete(end, "client left early", StatusPartiallyCompleted, "", domain.EventMetadata{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if e.Status() != StatusPartiallyCompleted {
		t.Fatalf("expected PARTIALLY_COMPLETED, got %s", e.Status())
	}
}

func TestFundingAllocationBounds(t *testing.T) {
	e := newEpisode(t)

	for _, pct := range []float64{0, -5, 100.5} {
		err := e.AddFundingSource(hmis.FundingVAWA, pct, domain.EventMetadata{})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %v, got %v", pct, err)
		}
	}
	if err := e.AddFundingSource(hmis.FundingVAWA, 100, domain.EventMetadata{}); err != nil {
		t.Fatalf("full allocation must pass: %v", err)
	}
	if err := e.AddFundingSource(hmis.FundingStateGrant, 25.5, domain.EventMetadata{}); err != nil {
		t.Fatalf("partial allocation must pass: %v", err)
	}
	if len(e.FundingAllocations()) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(e.FundingAllocations()))
	}
}

func TestAttachDocumentRejectsDuplicates(t *testing.T) {
	e := newEpisode(t)
	if err := e.AttachDocument("doc-1", "SAFETY_PLAN", "", domain.EventMetadata{}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	err := e.AttachDocument("doc-1", "SAFETY_PLAN", "", domain.EventMetadata{})
	var serr *domain.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected state error on duplicate attachment, got %v", err)
	}
}

func TestMarkCourtOrdered(t *testing.T) {
	e := newEpisode(t)
	if err := e.MarkCourtOrdered("", domain.EventMetadata{}); err == nil {
		t.Fatal("expected error for empty court order number")
	}
	if err := e.MarkCourtOrdered("CO-2024-118", domain.EventMetadata{}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !e.IsCourtOrdered() {
		t.Fatal("expected court ordered flag")
	}
}

func TestEpisodeReplay(t *testing.T) {
	original := newEpisode(t)
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	if err := original.Start(start, "main office", domain.EventMetadata{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := original.Complete(start.Add(50*time.Minute), "completed", StatusCompleted, "", domain.EventMetadata{}); err != nil {
		t.Fatalf("complete: %v", err)
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

	if replayed.ActualDurationMinutes() != 50 || replayed.Status() != StatusCompleted {
		t.Fatalf("replay mismatch: duration=%d status=%s", replayed.ActualDurationMinutes(), replayed.Status())
	}
}
