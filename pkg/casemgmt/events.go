package casemgmt

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventOpened           = "case.Opened"
	EventAssigned         = "case.Assigned"
	EventAssignmentEnded  = "case.AssignmentEnded"
	EventNoteAdded        = "case.NoteAdded"
	EventStatusChanged    = "case.StatusChanged"
	EventEnrollmentLinked = "case.EnrollmentLinked"
	EventEpisodeLinked    = "case.EpisodeLinked"
	EventSafetyPlanLinked = "case.SafetyPlanLinked"
	EventLedgerLinked     = "case.LedgerLinked"
	EventClosed           = "case.Closed"
)

// Opened creates a case record for a client.
type Opened struct {
	CaseID      string    `json:"case_id"`
	ClientID    string    `json:"client_id"`
	CaseType    string    `json:"case_type"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description,omitempty"`
	OpenedAt    time.Time `json:"opened_at"`
}

func (Opened) EventType() string { return EventOpened }

// Assigned adds a worker assignment to the case.
type Assigned struct {
	AssignmentID   string         `json:"assignment_id"`
	AssigneeID     string         `json:"assignee_id"`
	AssigneeName   string         `json:"assignee_name,omitempty"`
	Role           string         `json:"role,omitempty"`
	AssignmentType AssignmentType `json:"assignment_type"`
	Reason         string         `json:"reason,omitempty"`
	AssignedBy     string         `json:"assigned_by"`
	AssignedAt     time.Time      `json:"assigned_at"`
}

func (Assigned) EventType() string { return EventAssigned }

// AssignmentEnded closes out one assignment.
type AssignmentEnded struct {
	AssignmentID string    `json:"assignment_id"`
	AssigneeID   string    `json:"assignee_id"`
	Reason       string    `json:"reason,omitempty"`
	EndedBy      string    `json:"ended_by"`
	EndedAt      time.Time `json:"ended_at"`
}

func (AssignmentEnded) EventType() string { return EventAssignmentEnded }

// NoteAdded appends a case note.
type NoteAdded struct {
	NoteID   string    `json:"note_id"`
	Content  string    `json:"content"`
	AuthorID string    `json:"author_id"`
	AddedAt  time.Time `json:"added_at"`
}

func (NoteAdded) EventType() string { return EventNoteAdded }

// StatusChanged moves the case between workflow states.
type StatusChanged struct {
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

func (StatusChanged) EventType() string { return EventStatusChanged }

// EnrollmentLinked ties a program enrollment to the case.
type EnrollmentLinked struct {
	EnrollmentID string `json:"enrollment_id"`
	LinkedBy     string `json:"linked_by"`
	Reason       string `json:"reason,omitempty"`
}

func (EnrollmentLinked) EventType() string { return EventEnrollmentLinked }

// EpisodeLinked ties a service episode to the case.
type EpisodeLinked struct {
	EpisodeID string `json:"episode_id"`
	LinkedBy  string `json:"linked_by"`
	Reason    string `json:"reason,omitempty"`
}

func (EpisodeLinked) EventType() string { return EventEpisodeLinked }

// SafetyPlanLinked ties a safety plan to the case.
type SafetyPlanLinked struct {
	SafetyPlanID string `json:"safety_plan_id"`
	LinkedBy     string `json:"linked_by"`
	Reason       string `json:"reason,omitempty"`
}

func (SafetyPlanLinked) EventType() string { return EventSafetyPlanLinked }

// LedgerLinked ties a financial assistance ledger to the case.
type LedgerLinked struct {
	LedgerID string `json:"ledger_id"`
	LinkedBy string `json:"linked_by"`
	Reason   string `json:"reason,omitempty"`
}

func (LedgerLinked) EventType() string { return EventLedgerLinked }

// Closed ends the case.
type Closed struct {
	Reason   string    `json:"reason,omitempty"`
	ClosedAt time.Time `json:"closed_at"`
}

func (Closed) EventType() string { return EventClosed }

// RegisterEvents registers all case payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventOpened, func() domain.Payload { return &Opened{} })
	registry.Register(EventAssigned, func() domain.Payload { return &Assigned{} })
	registry.Register(EventAssignmentEnded, func() domain.Payload { return &AssignmentEnded{} })
	registry.Register(EventNoteAdded, func() domain.Payload { return &NoteAdded{} })
	registry.Register(EventStatusChanged, func() domain.Payload { return &StatusChanged{} })
	registry.Register(EventEnrollmentLinked, func() domain.Payload { return &EnrollmentLinked{} })
	registry.Register(EventEpisodeLinked, func() domain.Payload { return &EpisodeLinked{} })
	registry.Register(EventSafetyPlanLinked, func() domain.Payload { return &SafetyPlanLinked{} })
	registry.Register(EventLedgerLinked, func() domain.Payload { return &LedgerLinked{} })
	registry.Register(EventClosed, func() domain.Payload { return &Closed{} })
}
