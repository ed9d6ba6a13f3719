// Package serviceepisode implements the service episode aggregate: one
// scheduled unit of service delivery, from scheduling through completion.
package serviceepisode

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
)

const (
	EventCreated            = "episode.Created"
	EventStarted            = "episode.Started"
	EventCompleted          = "episode.Completed"
	EventProviderAdded      = "episode.ProviderAdded"
	EventFundingSourceAdded = "episode.FundingSourceAdded"
	EventOutcomeUpdated     = "episode.OutcomeUpdated"
	EventDocumentAttached   = "episode.DocumentAttached"
	EventMarkedCourtOrdered = "episode.MarkedCourtOrdered"
)

// Created schedules a new service episode.
type Created struct {
	EpisodeID              string             `json:"episode_id"`
	ClientID               string             `json:"client_id"`
	EnrollmentID           string             `json:"enrollment_id"`
	ProgramID              string             `json:"program_id,omitempty"`
	ServiceType            hmis.ServiceType   `json:"service_type"`
	ServiceDate            time.Time          `json:"service_date"`
	PlannedDurationMinutes int                `json:"planned_duration_minutes,omitempty"`
	PrimaryProviderID      string             `json:"primary_provider_id"`
	PrimaryProviderName    string             `json:"primary_provider_name,omitempty"`
	FundingSource          hmis.FundingSource `json:"funding_source,omitempty"`
	Description            string             `json:"description,omitempty"`
	Confidential           bool               `json:"confidential"`
	CreatedBy              string             `json:"created_by"`
}

func (Created) EventType() string { return EventCreated }

// Started moves the episode into delivery.
type Started struct {
	StartTime time.Time `json:"start_time"`
	Location  string    `json:"location,omitempty"`
}

func (Started) EventType() string { return EventStarted }

// Completed ends delivery with a terminal status and computed duration.
type Completed struct {
	EndTime               time.Time `json:"end_time"`
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
	Outcome               string    `json:"outcome,omitempty"`
	Status                Status    `json:"status"`
	Notes                 string    `json:"notes,omitempty"`
}

func (Completed) EventType() string { return EventCompleted }

// ProviderAdded records an additional provider on the episode.
type ProviderAdded struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (ProviderAdded) EventType() string { return EventProviderAdded }

// FundingSourceAdded records an additional funding allocation.
type FundingSourceAdded struct {
	Source               hmis.FundingSource `json:"funding_source"`
	AllocationPercentage float64            `json:"allocation_percentage"`
}

func (FundingSourceAdded) EventType() string { return EventFundingSourceAdded }

// OutcomeUpdated replaces the outcome and follow-up fields.
type OutcomeUpdated struct {
	Outcome          string     `json:"outcome"`
	FollowUpRequired string     `json:"follow_up_required,omitempty"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`
	UpdatedBy        string     `json:"updated_by"`
}

func (OutcomeUpdated) EventType() string { return EventOutcomeUpdated }

// DocumentAttached links a document to the episode.
type DocumentAttached struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (DocumentAttached) EventType() string { return EventDocumentAttached }

// MarkedCourtOrdered flags the episode as court ordered.
type MarkedCourtOrdered struct {
	CourtOrderNumber string `json:"court_order_number"`
}

func (MarkedCourtOrdered) EventType() string { return EventMarkedCourtOrdered }

// RegisterEvents registers all episode payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventCreated, func() domain.Payload { return &Created{} })
	registry.Register(EventStarted, func() domain.Payload { return &Started{} })
	registry.Register(EventCompleted, func() domain.Payload { return &Completed{} })
	registry.Register(EventProviderAdded, func() domain.Payload { return &ProviderAdded{} })
	registry.Register(EventFundingSourceAdded, func() domain.Payload { return &FundingSourceAdded{} })
	registry.Register(EventOutcomeUpdated, func() domain.Payload { return &OutcomeUpdated{} })
	registry.Register(EventDocumentAttached, func() domain.Payload { return &DocumentAttached{} })
	registry.Register(EventMarkedCourtOrdered, func() domain.Payload { return &MarkedCourtOrdered{} })
}
