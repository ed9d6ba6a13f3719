// Package casemgmt implements the case record aggregate. A case is the
// coordination layer over a client's program enrollments, service
// episodes, safety plans and financial assistance: it carries worker
// assignments, notes and workflow status rather than duplicating the
// data the linked aggregates own.
package casemgmt

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for case records.
const AggregateType = "CaseRecord"

// Status is the case workflow state.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOnHold     Status = "ON_HOLD"
	StatusClosed     Status = "CLOSED"
	StatusCancelled  Status = "CANCELLED"
)

// Priority is the case triage level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// AssignmentType distinguishes the lead worker from supporting staff.
type AssignmentType string

const (
	AssignmentPrimary    AssignmentType = "PRIMARY"
	AssignmentSecondary  AssignmentType = "SECONDARY"
	AssignmentConsultant AssignmentType = "CONSULTANT"
)

// Assignment is one worker's stint on the case.
type Assignment struct {
	AssignmentID   string
	AssigneeID     string
	AssigneeName   string
	Role           string
	AssignmentType AssignmentType
	Reason         string
	AssignedBy     string
	AssignedAt     time.Time
	EndedAt        *time.Time
	EndReason      string
}

// IsActive reports whether the assignment is still in effect.
func (a Assignment) IsActive() bool { return a.EndedAt == nil }

// IsActiveOn reports whether the assignment covered the given time.
func (a Assignment) IsActiveOn(at time.Time) bool {
	if at.Before(a.AssignedAt) {
		return false
	}
	return a.EndedAt == nil || at.Before(*a.EndedAt)
}

// Note is one dated case note.
type Note struct {
	NoteID   string
	Content  string
	AuthorID string
	AddedAt  time.Time
}

// Case is the event-sourced case record aggregate.
type Case struct {
	domain.AggregateRoot

	clientID    string
	caseType    string
	priority    Priority
	status      Status
	description string

	notes       []Note
	assignments []Assignment

	linkedEnrollments []string
	linkedEpisodes    []string
	linkedSafetyPlans []string
	linkedLedgers     []string

	openedAt time.Time
	closedAt *time.Time
}

// New returns an empty case ready for replay or creation.
func New() *Case {
	c := &Case{}
	c.AggregateRoot = domain.NewAggregateRoot(AggregateType, c.when)
	return c
}

// Open creates a case record for a client.
func Open(clientID, caseType string, priority Priority, description string, meta domain.EventMetadata) (*Case, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	if caseType == "" {
		return nil, domain.NewValidationError("caseType", "case type is required")
	}
	if priority == "" {
		priority = PriorityMedium
	}

	c := New()
	err := c.Apply(&Opened{
		CaseID:      uuid.NewString(),
		ClientID:    clientID,
		CaseType:    caseType,
		Priority:    priority,
		Description: description,
		OpenedAt:    domain.Now(),
	}, meta)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Assign puts a worker on the case. Assigning a new primary ends the
// current primary assignment first.
func (c *Case) Assign(assigneeID, assigneeName, role string, assignmentType AssignmentType,
	reason, assignedBy string, meta domain.EventMetadata) error {

	if c.status == StatusClosed {
		return domain.NewStateError("cannot assign a closed case")
	}
	if assigneeID == "" {
		return domain.NewValidationError("assigneeId", "assignee id is required")
	}
	if assignmentType == "" {
		assignmentType = AssignmentPrimary
	}

	if assignmentType == AssignmentPrimary {
		if current := c.CurrentPrimaryAssignment(); current != nil {
			err := c.EndAssignment(current.AssignmentID, "replaced by new primary assignment", assignedBy, meta)
			if err != nil {
				return err
			}
		}
	}

	return c.Apply(&Assigned{
		AssignmentID:   uuid.NewString(),
		AssigneeID:     assigneeID,
		AssigneeName:   assigneeName,
		Role:           role,
		AssignmentType: assignmentType,
		Reason:         reason,
		AssignedBy:     assignedBy,
		AssignedAt:     domain.Now(),
	}, meta)
}

// EndAssignment closes out one assignment by id.
func (c *Case) EndAssignment(assignmentID, reason, endedBy string, meta domain.EventMetadata) error {
	assignment := c.findAssignment(assignmentID)
	if assignment == nil {
		return domain.NewValidationError("assignmentId", fmt.Sprintf("assignment %s not found", assignmentID))
	}
	if !assignment.IsActive() {
		return domain.NewStateError("assignment %s is already ended", assignmentID)
	}
	return c.Apply(&AssignmentEnded{
		AssignmentID: assignmentID,
		AssigneeID:   assignment.AssigneeID,
		Reason:       reason,
		EndedBy:      endedBy,
		EndedAt:      domain.Now(),
	}, meta)
}

// AddNote appends a case note.
func (c *Case) AddNote(content, authorID string, meta domain.EventMetadata) error {
	if content == "" {
		return domain.NewValidationError("content", "note content is required")
	}
	if authorID == "" {
		return domain.NewValidationError("authorId", "author id is required")
	}
	return c.Apply(&NoteAdded{
		NoteID:   uuid.NewString(),
		Content:  content,
		AuthorID: authorID,
		AddedAt:  domain.Now(),
	}, meta)
}

// UpdateStatus moves the case between workflow states. Closing goes
// through Close so the closed timestamp is recorded. Same-status
// updates are a no-op.
func (c *Case) UpdateStatus(newStatus Status, meta domain.EventMetadata) error {
	if c.status == StatusClosed {
		return domain.NewStateError("case is closed")
	}
	if newStatus == StatusClosed {
		return domain.NewValidationError("status", "use Close to close a case")
	}
	if c.status == newStatus {
		return nil
	}
	return c.Apply(&StatusChanged{
		OldStatus: c.status,
		NewStatus: newStatus,
		ChangedAt: domain.Now(),
	}, meta)
}

// LinkEnrollment ties a program enrollment to the case.
func (c *Case) LinkEnrollment(enrollmentID, linkedBy, reason string, meta domain.EventMetadata) error {
	if enrollmentID == "" {
		return domain.NewValidationError("enrollmentId", "enrollment id is required")
	}
	if contains(c.linkedEnrollments, enrollmentID) {
		return domain.NewStateError("enrollment %s is already linked to this case", enrollmentID)
	}
	return c.Apply(&EnrollmentLinked{EnrollmentID: enrollmentID, LinkedBy: linkedBy, Reason: reason}, meta)
}

// LinkEpisode ties a service episode to the case.
func (c *Case) LinkEpisode(episodeID, linkedBy, reason string, meta domain.EventMetadata) error {
	if episodeID == "" {
		return domain.NewValidationError("episodeId", "episode id is required")
	}
	if contains(c.linkedEpisodes, episodeID) {
		return domain.NewStateError("service episode %s is already linked to this case", episodeID)
	}
	return c.Apply(&EpisodeLinked{EpisodeID: episodeID, LinkedBy: linkedBy, Reason: reason}, meta)
}

// LinkSafetyPlan ties a safety plan to the case.
func (c *Case) LinkSafetyPlan(safetyPlanID, linkedBy, reason string, meta domain.EventMetadata) error {
	if safetyPlanID == "" {
		return domain.NewValidationError("safetyPlanId", "safety plan id is required")
	}
	if contains(c.linkedSafetyPlans, safetyPlanID) {
		return domain.NewStateError("safety plan %s is already linked to this case", safetyPlanID)
	}
	return c.Apply(&SafetyPlanLinked{SafetyPlanID: safetyPlanID, LinkedBy: linkedBy, Reason: reason}, meta)
}

// LinkLedger ties a financial assistance ledger to the case.
func (c *Case) LinkLedger(ledgerID, linkedBy, reason string, meta domain.EventMetadata) error {
	if ledgerID == "" {
		return domain.NewValidationError("ledgerId", "ledger id is required")
	}
	if contains(c.linkedLedgers, ledgerID) {
		return domain.NewStateError("ledger %s is already linked to this case", ledgerID)
	}
	return c.Apply(&LedgerLinked{LedgerID: ledgerID, LinkedBy: linkedBy, Reason: reason}, meta)
}

// Close ends the case. A case closes once.
func (c *Case) Close(reason string, meta domain.EventMetadata) error {
	if c.status == StatusClosed {
		return domain.NewStateError("case is already closed")
	}
	return c.Apply(&Closed{Reason: reason, ClosedAt: domain.Now()}, meta)
}

func (c *Case) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Opened:
		c.SetID(e.CaseID)
		c.clientID = e.ClientID
		c.caseType = e.CaseType
		c.priority = e.Priority
		c.description = e.Description
		c.status = StatusOpen
		c.openedAt = e.OpenedAt

	case *Assigned:
		c.assignments = append(c.assignments, Assignment{
			AssignmentID:   e.AssignmentID,
			AssigneeID:     e.AssigneeID,
			AssigneeName:   e.AssigneeName,
			Role:           e.Role,
			AssignmentType: e.AssignmentType,
			Reason:         e.Reason,
			AssignedBy:     e.AssignedBy,
			AssignedAt:     e.AssignedAt,
		})

	case *AssignmentEnded:
		for i := range c.assignments {
			if c.assignments[i].AssignmentID == e.AssignmentID {
				endedAt := e.EndedAt
				c.assignments[i].EndedAt = &endedAt
				c.assignments[i].EndReason = e.Reason
				break
			}
		}

	case *NoteAdded:
		c.notes = append(c.notes, Note{
			NoteID:   e.NoteID,
			Content:  e.Content,
			AuthorID: e.AuthorID,
			AddedAt:  e.AddedAt,
		})

	case *StatusChanged:
		c.status = e.NewStatus

	case *EnrollmentLinked:
		c.linkedEnrollments = append(c.linkedEnrollments, e.EnrollmentID)

	case *EpisodeLinked:
		c.linkedEpisodes = append(c.linkedEpisodes, e.EpisodeID)

	case *SafetyPlanLinked:
		c.linkedSafetyPlans = append(c.linkedSafetyPlans, e.SafetyPlanID)

	case *LedgerLinked:
		c.linkedLedgers = append(c.linkedLedgers, e.LedgerID)

	case *Closed:
		c.status = StatusClosed
		closedAt := e.ClosedAt
		c.closedAt = &closedAt

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

func (c *Case) findAssignment(assignmentID string) *Assignment {
	for i := range c.assignments {
		if c.assignments[i].AssignmentID == assignmentID {
			return &c.assignments[i]
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ClientID returns the client this case belongs to.
func (c *Case) ClientID() string { return c.clientID }

// CaseType returns the case category.
func (c *Case) CaseType() string { return c.caseType }

// Priority returns the triage level.
func (c *Case) Priority() Priority { return c.priority }

// Status returns the workflow state.
func (c *Case) Status() Status { return c.status }

// Description returns the free-text description.
func (c *Case) Description() string { return c.description }

// IsActive reports whether the case is neither closed nor cancelled.
func (c *Case) IsActive() bool {
	return c.status != StatusClosed && c.status != StatusCancelled
}

// OpenedAt returns when the case was opened.
func (c *Case) OpenedAt() time.Time { return c.openedAt }

// ClosedAt returns when the case closed, nil while open.
func (c *Case) ClosedAt() *time.Time {
	if c.closedAt == nil {
		return nil
	}
	closedAt := *c.closedAt
	return &closedAt
}

// Notes returns a copy of the case notes.
func (c *Case) Notes() []Note {
	out := make([]Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// AssignmentHistory returns a copy of every assignment ever made.
func (c *Case) AssignmentHistory() []Assignment {
	out := make([]Assignment, len(c.assignments))
	copy(out, c.assignments)
	return out
}

// ActiveAssignments returns the assignments still in effect.
func (c *Case) ActiveAssignments() []Assignment {
	var out []Assignment
	for _, a := range c.assignments {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// CurrentPrimaryAssignment returns the active primary assignment, nil
// when the case has none.
func (c *Case) CurrentPrimaryAssignment() *Assignment {
	for i := range c.assignments {
		if c.assignments[i].IsActive() && c.assignments[i].AssignmentType == AssignmentPrimary {
			assignment := c.assignments[i]
			return &assignment
		}
	}
	return nil
}

// AssignmentsForWorker returns every assignment a worker has held on
// this case.
func (c *Case) AssignmentsForWorker(workerID string) []Assignment {
	var out []Assignment
	for _, a := range c.assignments {
		if a.AssigneeID == workerID {
			out = append(out, a)
		}
	}
	return out
}

// PrimaryAssignmentOn returns the primary assignment in effect at the
// given time, nil when there was none.
func (c *Case) PrimaryAssignmentOn(at time.Time) *Assignment {
	for i := range c.assignments {
		if c.assignments[i].AssignmentType == AssignmentPrimary && c.assignments[i].IsActiveOn(at) {
			assignment := c.assignments[i]
			return &assignment
		}
	}
	return nil
}

// LinkedEnrollments returns a copy of the linked enrollment ids.
func (c *Case) LinkedEnrollments() []string {
	out := make([]string, len(c.linkedEnrollments))
	copy(out, c.linkedEnrollments)
	return out
}

// LinkedEpisodes returns a copy of the linked service episode ids.
func (c *Case) LinkedEpisodes() []string {
	out := make([]string, len(c.linkedEpisodes))
	copy(out, c.linkedEpisodes)
	return out
}

// LinkedSafetyPlans returns a copy of the linked safety plan ids.
func (c *Case) LinkedSafetyPlans() []string {
	out := make([]string, len(c.linkedSafetyPlans))
	copy(out, c.linkedSafetyPlans)
	return out
}

// LinkedLedgers returns a copy of the linked ledger ids.
func (c *Case) LinkedLedgers() []string {
	out := make([]string, len(c.linkedLedgers))
	copy(out, c.linkedLedgers)
	return out
}
