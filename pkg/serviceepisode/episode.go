package serviceepisode

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
)

// AggregateType is the stream type name for service episodes.
const AggregateType = "ServiceEpisode"

// Status is the episode completion status. SCHEDULED and IN_PROGRESS
// are the only non-terminal states.
type Status string

const (
	StatusScheduled          Status = "SCHEDULED"
	StatusInProgress         Status = "IN_PROGRESS"
	StatusCompleted          Status = "COMPLETED"
	StatusPartiallyCompleted Status = "PARTIALLY_COMPLETED"
	StatusCancelled          Status = "CANCELLED"
	StatusNoShow             Status = "NO_SHOW"
	StatusPostponed          Status = "POSTPONED"
)

// IsTerminal reports whether the status ends the episode lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyCompleted, StatusCancelled, StatusNoShow, StatusPostponed:
		return true
	}
	return false
}

// Provider is an additional provider on the episode.
type Provider struct {
	ProviderID   string
	ProviderName string
	Role         string
}

// FundingAllocation is a funding source with its allocation share.
type FundingAllocation struct {
	Source               hmis.FundingSource
	AllocationPercentage float64
}

// Episode is the event-sourced service episode aggregate.
type Episode struct {
	domain.AggregateRoot

	clientID     string
	enrollmentID string
	programID    string
	serviceType  hmis.ServiceType
	serviceDate  time.Time

	status                 Status
	startTime              *time.Time
	endTime                *time.Time
	location               string
	plannedDurationMinutes int
	actualDurationMinutes  int

	primaryProviderID   string
	primaryProviderName string
	providers           []Provider

	primaryFundingSource hmis.FundingSource
	fundingAllocations   []FundingAllocation

	outcome          string
	followUpRequired string
	followUpDate     *time.Time
	notes            string

	confidential     bool
	courtOrdered     bool
	courtOrderNumber string
	documentIDs      []string

	createdBy string
}

// New returns an empty episode ready for replay or creation.
func New() *Episode {
	e := &Episode{}
	e.AggregateRoot = domain.NewAggregateRoot(AggregateType, e.when)
	return e
}

// Create schedules a new episode in SCHEDULED status.
func Create(clientID, enrollmentID, programID string, serviceType hmis.ServiceType,
	serviceDate time.Time, plannedDurationMinutes int, primaryProviderID, primaryProviderName string,
	fundingSource hmis.FundingSource, description string, confidential bool,
	createdBy string, meta domain.EventMetadata) (*Episode, error) {

	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	if enrollmentID == "" {
		return nil, domain.NewValidationError("enrollmentId", "enrollment id is required")
	}
	if serviceType == "" {
		return nil, domain.NewValidationError("serviceType", "service type is required")
	}
	if serviceDate.IsZero() {
		return nil, domain.NewValidationError("serviceDate", "service date is required")
	}
	if plannedDurationMinutes < 0 {
		return nil, domain.NewValidationError("plannedDurationMinutes", "planned duration must not be negative")
	}

	e := New()
	err := e.Apply(&Created{
		EpisodeID:              uuid.NewString(),
		ClientID:               clientID,
		EnrollmentID:           enrollmentID,
		ProgramID:              programID,
		ServiceType:            serviceType,
		ServiceDate:            serviceDate,
		PlannedDurationMinutes: plannedDurationMinutes,
		PrimaryProviderID:      primaryProviderID,
		PrimaryProviderName:    primaryProviderName,
		FundingSource:          fundingSource,
		Description:            description,
		Confidential:           confidential,
		CreatedBy:              createdBy,
	}, meta)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Start begins delivery. Only a SCHEDULED episode can start.
func (e *Episode) Start(startTime time.Time, location string, meta domain.EventMetadata) error {
	if e.status != StatusScheduled {
		return domain.NewStateError("cannot start episode in status %s", e.status)
	}
	if startTime.IsZero() {
		return domain.NewValidationError("startTime", "start time is required")
	}
	return e.Apply(&Started{StartTime: startTime, Location: location}, meta)
}

// Complete ends delivery with a terminal status. Only an IN_PROGRESS
// episode can complete; the actual duration is computed from the
// recorded start time.
func (e *Episode) Complete(endTime time.Time, outcome string, status Status, notes string, meta domain.EventMetadata) error {
	if e.status != StatusInProgress {
		return domain.NewStateError("cannot complete episode in status %s", e.status)
	}
	if !status.IsTerminal() {
		return domain.NewValidationError("status", "completion requires a terminal status")
	}
	if endTime.Before(*e.startTime) {
		return domain.NewValidationError("endTime", "end time cannot precede start time")
	}

	duration := int(endTime.Sub(*e.startTime).Minutes())
	return e.Apply(&Completed{
		EndTime:               endTime,
		ActualDurationMinutes: duration,
		Outcome:               outcome,
		Status:                status,
		Notes:                 notes,
	}, meta)
}

// AddProvider records an additional provider.
func (e *Episode) AddProvider(providerID, providerName, role string, meta domain.EventMetadata) error {
	if providerID == "" {
		return domain.NewValidationError("providerId", "provider id is required")
	}
	return e.Apply(&ProviderAdded{ProviderID: providerID, ProviderName: providerName, Role: role}, meta)
}

// AddFundingSource records an additional funding allocation. The
// allocation percentage must be in (0, 100].
func (e *Episode) AddFundingSource(source hmis.FundingSource, allocationPercentage float64, meta domain.EventMetadata) error {
	if allocationPercentage <= 0 || allocationPercentage > 100 {
		return domain.NewValidationError("allocationPercentage", "allocation percentage must be between 0 and 100")
	}
	return e.Apply(&FundingSourceAdded{Source: source, AllocationPercentage: allocationPercentage}, meta)
}

// UpdateOutcome replaces the outcome and follow-up fields.
func (e *Episode) UpdateOutcome(outcome, followUpRequired string, followUpDate *time.Time, updatedBy string, meta domain.EventMetadata) error {
	return e.Apply(&OutcomeUpdated{
		Outcome:          outcome,
		FollowUpRequired: followUpRequired,
		FollowUpDate:     followUpDate,
		UpdatedBy:        updatedBy,
	}, meta)
}

// AttachDocument links a document to the episode.
func (e *Episode) AttachDocument(documentID, documentType, description string, meta domain.EventMetadata) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "document id is required")
	}
	for _, id := range e.documentIDs {
		if id == documentID {
			return domain.NewStateError("document %s is already attached", documentID)
		}
	}
	return e.Apply(&DocumentAttached{DocumentID: documentID, DocumentType: documentType, Description: description}, meta)
}

// MarkCourtOrdered flags the episode as court ordered.
func (e *Episode) MarkCourtOrdered(courtOrderNumber string, meta domain.EventMetadata) error {
	if courtOrderNumber == "" {
		return domain.NewValidationError("courtOrderNumber", "court order number is required")
	}
	return e.Apply(&MarkedCourtOrdered{CourtOrderNumber: courtOrderNumber}, meta)
}

func (e *Episode) when(payload domain.Payload) error {
	switch ev := payload.(type) {
	case *Created:
		e.SetID(ev.EpisodeID)
		e.clientID = ev.ClientID
		e.enrollmentID = ev.EnrollmentID
		e.programID = ev.ProgramID
		e.serviceType = ev.ServiceType
		e.serviceDate = ev.ServiceDate
		e.plannedDurationMinutes = ev.PlannedDurationMinutes
		e.primaryProviderID = ev.PrimaryProviderID
		e.primaryProviderName = ev.PrimaryProviderName
		e.primaryFundingSource = ev.FundingSource
		e.confidential = ev.Confidential
		e.status = StatusScheduled
		e.createdBy = ev.CreatedBy

	case *Started:
		start := ev.StartTime
		e.startTime = &start
		e.location = ev.Location
		e.status = StatusInProgress

	case *Completed:
		end := ev.EndTime
		e.endTime = &end
		e.actualDurationMinutes = ev.ActualDurationMinutes
		e.outcome = ev.Outcome
		e.notes = ev.Notes
		e.status = ev.Status

	case *ProviderAdded:
		e.providers = append(e.providers, Provider{
			ProviderID:   ev.ProviderID,
			ProviderName: ev.ProviderName,
			Role:         ev.Role,
		})

	case *FundingSourceAdded:
		e.fundingAllocations = append(e.fundingAllocations, FundingAllocation{
			Source:               ev.Source,
			AllocationPercentage: ev.AllocationPercentage,
		})

	case *OutcomeUpdated:
		e.outcome = ev.Outcome
		e.followUpRequired = ev.FollowUpRequired
		e.followUpDate = ev.FollowUpDate

	case *DocumentAttached:
		e.documentIDs = append(e.documentIDs, ev.DocumentID)

	case *MarkedCourtOrdered:
		e.courtOrdered = true
		e.courtOrderNumber = ev.CourtOrderNumber

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// ClientID returns the served client's id.
func (e *Episode) ClientID() string { return e.clientID }

// EnrollmentID returns the owning enrollment's id.
func (e *Episode) EnrollmentID() string { return e.enrollmentID }

// ServiceType returns the service type.
func (e *Episode) ServiceType() hmis.ServiceType { return e.serviceType }

// Status returns the completion status.
func (e *Episode) Status() Status { return e.status }

// IsInProgress reports whether delivery has started but not ended.
func (e *Episode) IsInProgress() bool { return e.status == StatusInProgress }

// IsCompleted reports whether the episode finished fully.
func (e *Episode) IsCompleted() bool { return e.status == StatusCompleted }

// ActualDurationMinutes returns the delivered duration, zero until
// completion.
func (e *Episode) ActualDurationMinutes() int { return e.actualDurationMinutes }

// StartTime returns when delivery began, nil while scheduled.
func (e *Episode) StartTime() *time.Time { return e.startTime }

// Outcome returns the recorded outcome text.
func (e *Episode) Outcome() string { return e.outcome }

// RequiresFollowUp reports whether follow-up work is recorded.
func (e *Episode) RequiresFollowUp() bool { return e.followUpRequired != "" }

// IsFollowUpOverdue reports whether the follow-up date has passed.
func (e *Episode) IsFollowUpOverdue() bool {
	return e.followUpDate != nil && e.followUpDate.Before(domain.Now())
}

// IsConfidential reports whether the episode is confidential.
func (e *Episode) IsConfidential() bool { return e.confidential }

// IsCourtOrdered reports whether the episode is court ordered.
func (e *Episode) IsCourtOrdered() bool { return e.courtOrdered }

// Providers returns a copy of the additional providers.
func (e *Episode) Providers() []Provider {
	out := make([]Provider, len(e.providers))
	copy(out, e.providers)
	return out
}

// FundingAllocations returns a copy of the additional allocations.
func (e *Episode) FundingAllocations() []FundingAllocation {
	out := make([]FundingAllocation, len(e.fundingAllocations))
	copy(out, e.fundingAllocations)
	return out
}

// DocumentIDs returns a copy of the attached document references.
func (e *Episode) DocumentIDs() []string {
	out := make([]string, len(e.documentIDs))
	copy(out, e.documentIDs)
	return out
}
