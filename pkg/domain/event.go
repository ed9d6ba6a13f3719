package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Event represents a domain event that has occurred in the system.
// Events are immutable facts about state changes; once appended to a
// stream they are never modified or repurposed.
type Event struct {
	// ID is the unique, sortable identifier for this event
	ID string

	// AggregateID is the identifier of the aggregate this event belongs to
	AggregateID string

	// AggregateType is the type name of the aggregate (e.g., "Client", "Consent")
	AggregateType string

	// EventType is the registered type name of the payload (e.g., "client.Created")
	EventType string

	// Version is the version number of the aggregate after applying this event.
	// Versions are contiguous per stream, starting at 1.
	Version int64

	// Timestamp is when the event was created. Ordering is defined by
	// Version, not Timestamp; two events may share a timestamp.
	Timestamp time.Time

	// Position is the event's global, monotonically increasing position in
	// the store, assigned on append. Used by projections to resume.
	Position int64

	// Data is the serialized JSON payload of the event
	Data []byte

	// Metadata contains additional contextual information
	Metadata EventMetadata
}

// EventMetadata contains contextual information about an event.
type EventMetadata struct {
	// CausationID is the ID of the command that caused this event
	CausationID string `json:"causation_id,omitempty"`

	// CorrelationID is used to trace related events across aggregates
	CorrelationID string `json:"correlation_id,omitempty"`

	// PrincipalID identifies the user or service that triggered this event
	PrincipalID string `json:"principal_id,omitempty"`

	// Custom allows for application-specific metadata
	Custom map[string]string `json:"custom,omitempty"`
}

// Payload is implemented by every concrete event payload. EventType must
// return a stable name: payloads are a versioned wire format once any event
// has been durably appended, so names are never renamed or repurposed and
// new fields must be additive.
type Payload interface {
	EventType() string
}

// NewEventID generates a lexicographically sortable event identifier.
func NewEventID() string {
	return ulid.Make().String()
}

// Now is the clock used when stamping events. Overridable in tests.
var Now = func() time.Time { return time.Now().UTC() }
