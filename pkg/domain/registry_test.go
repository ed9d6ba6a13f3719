package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shelterpoint/casevault/pkg/domain"
)

func newTestRegistry() *domain.Registry {
	registry := domain.NewRegistry()
	registry.Register("counter.Created", func() domain.Payload { return &counterCreated{} })
	registry.Register("counter.Incremented", func() domain.Payload { return &counterIncremented{} })
	return registry
}

func TestRegistryDecode(t *testing.T) {
	registry := newTestRegistry()

	payload, err := registry.Decode(&domain.Event{
		ID:        "evt-1",
		EventType: "counter.Incremented",
		Data:      []byte(`{"by":7}`),
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	incremented, ok := payload.(*counterIncremented)
	if !ok || incremented.By != 7 {
		t.Fatalf("wrong payload: %#v", payload)
	}

	_, err = registry.Decode(&domain.Event{
		ID:            "evt-2",
		AggregateType: "Counter",
		EventType:     "counter.Renamed",
		Data:          []byte(`{}`),
	})
	var uerr *domain.UnhandledEventError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected unhandled event error, got %v", err)
	}
	if uerr.EventType != "counter.Renamed" {
		t.Errorf("error must name the event type: %+v", uerr)
	}

	_, err = registry.Decode(&domain.Event{
		ID:        "evt-3",
		EventType: "counter.Incremented",
		Data:      []byte(`{not json`),
	})
	if err == nil {
		t.Fatal("expected decode error for malformed data")
	}
}

func TestRegistryKnows(t *testing.T) {
	registry := newTestRegistry()
	if !registry.Knows("counter.Created") {
		t.Error("registered type must be known")
	}
	if registry.Knows("counter.Renamed") {
		t.Error("unregistered type must not be known")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	registry := newTestRegistry()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	registry.Register("counter.Created", func() domain.Payload { return &counterCreated{} })
}

func TestErrorTaxonomy(t *testing.T) {
	verr := domain.NewValidationError("amount", "must be positive")
	if verr.Error() != "amount: must be positive" {
		t.Errorf("validation message: %q", verr.Error())
	}
	if !domain.IsValidation(verr) || domain.IsState(verr) {
		t.Error("validation error misclassified")
	}

	serr := domain.NewStateError("cannot close %s ledger", "unbalanced")
	if serr.Error() != "cannot close unbalanced ledger" {
		t.Errorf("state message: %q", serr.Error())
	}
	if !domain.IsState(serr) || domain.IsValidation(serr) {
		t.Error("state error misclassified")
	}

	// Classification survives wrapping.
	if !domain.IsState(fmt.Errorf("saving aggregate: %w", serr)) {
		t.Error("wrapped state error lost its classification")
	}
	if !domain.IsValidation(fmt.Errorf("rejecting command: %w", verr)) {
		t.Error("wrapped validation error lost its classification")
	}
}
