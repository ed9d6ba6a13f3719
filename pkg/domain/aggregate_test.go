package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// counter is a minimal aggregate used to exercise the root's mechanics.
type counter struct {
	domain.AggregateRoot
	total int
}

type counterCreated struct {
	CounterID string `json:"counter_id"`
}

func (counterCreated) EventType() string { return "counter.Created" }

type counterIncremented struct {
	By int `json:"by"`
}

func (counterIncremented) EventType() string { return "counter.Incremented" }

func newCounter() *counter {
	c := &counter{}
	c.AggregateRoot = domain.NewAggregateRoot("Counter", c.when)
	return c
}

func (c *counter) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *counterCreated:
		c.SetID(e.CounterID)
	case *counterIncremented:
		if e.By < 0 {
			return errors.New("negative increment")
		}
		c.total += e.By
	default:
		return domain.NewUnhandledEventError("Counter", payload.EventType())
	}
	return nil
}

func TestApplyBuffersAndIncrements(t *testing.T) {
	restore := domain.Now
	stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	domain.Now = func() time.Time { return stamp }
	defer func() { domain.Now = restore }()

	c := newCounter()
	meta := domain.EventMetadata{PrincipalID: "worker-1", CorrelationID: "corr-1"}

	if err := c.Apply(&counterCreated{CounterID: "counter-1"}, meta); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := c.Apply(&counterIncremented{By: 3}, meta); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if c.ID() != "counter-1" || c.Version() != 2 || c.total != 3 {
		t.Fatalf("state: id=%s version=%d total=%d", c.ID(), c.Version(), c.total)
	}

	pending := c.UncommittedEvents()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending events, got %d", len(pending))
	}
	for i, event := range pending {
		if event.Version != int64(i)+1 {
			t.Errorf("pending versions must be contiguous from 1: %+v", event)
		}
		if event.AggregateType != "Counter" || !event.Timestamp.Equal(stamp) {
			t.Errorf("event envelope wrong: %+v", event)
		}
		if event.Metadata.PrincipalID != "worker-1" {
			t.Errorf("metadata not carried: %+v", event.Metadata)
		}
		if event.ID == "" {
			t.Error("event must get an id")
		}
	}
	if pending[1].EventType != "counter.Incremented" || string(pending[1].Data) != `{"by":3}` {
		t.Errorf("payload serialization wrong: %s %s", pending[1].EventType, pending[1].Data)
	}

	c.ClearUncommittedEvents()
	if len(c.UncommittedEvents()) != 0 {
		t.Fatal("clear must empty the pending buffer")
	}
	if c.Version() != 2 {
		t.Fatal("clear must not touch the version")
	}
}

func TestApplyHandlerErrorLeavesStateUntouched(t *testing.T) {
	c := newCounter()
	if err := c.Apply(&counterCreated{CounterID: "counter-1"}, domain.EventMetadata{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := c.Apply(&counterIncremented{By: -1}, domain.EventMetadata{}); err == nil {
		t.Fatal("expected handler error")
	}
	if c.Version() != 1 || len(c.UncommittedEvents()) != 1 {
		t.Fatalf("rejected apply must not advance: version=%d pending=%d", c.Version(), len(c.UncommittedEvents()))
	}
}

func TestReplaySetsVersionWithoutBuffering(t *testing.T) {
	c := newCounter()

	if err := c.Replay(&counterCreated{CounterID: "counter-1"}, 1); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if err := c.Replay(&counterIncremented{By: 5}, 2); err != nil {
		t.Fatalf("replay: %v", err)
	}

	if c.Version() != 2 || c.total != 5 {
		t.Fatalf("replay state: version=%d total=%d", c.Version(), c.total)
	}
	if len(c.UncommittedEvents()) != 0 {
		t.Fatal("replay must never buffer events")
	}

	// A command after replay continues the stream from the replayed version.
	if err := c.Apply(&counterIncremented{By: 1}, domain.EventMetadata{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	pending := c.UncommittedEvents()
	if len(pending) != 1 || pending[0].Version != 3 {
		t.Fatalf("post-replay apply must continue at version 3: %+v", pending)
	}

	var uerr *domain.UnhandledEventError
	if err := c.Replay(&unknownPayload{}, 4); !errors.As(err, &uerr) {
		t.Fatalf("expected unhandled event error, got %v", err)
	}
}

type unknownPayload struct{}

func (unknownPayload) EventType() string { return "counter.Forgotten" }

func TestRestoreVersion(t *testing.T) {
	c := newCounter()
	c.SetID("counter-1")
	c.RestoreVersion(40)

	if err := c.Apply(&counterIncremented{By: 1}, domain.EventMetadata{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	pending := c.UncommittedEvents()
	if len(pending) != 1 || pending[0].Version != 41 {
		t.Fatalf("apply after restore must continue at 41: %+v", pending)
	}
}
