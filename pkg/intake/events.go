package intake

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventCreated            = "intake.ContactCreated"
	EventWorkflowUpdated    = "intake.WorkflowUpdated"
	EventContactInfoUpdated = "intake.ContactInfoUpdated"
	EventPromoted           = "intake.ContactPromoted"
	EventExpired            = "intake.ContactExpired"
)

// Created opens a pre-intake contact with its TTL deadline.
type Created struct {
	ContactID        string         `json:"contact_id"`
	ClientAlias      string         `json:"client_alias"`
	ContactDate      time.Time      `json:"contact_date"`
	ReferralSource   ReferralSource `json:"referral_source"`
	IntakeWorkerName string         `json:"intake_worker_name,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ExpiresAt        time.Time      `json:"expires_at"`
}

func (Created) EventType() string { return EventCreated }

// WorkflowUpdated records the data captured at one intake step.
type WorkflowUpdated struct {
	Step int      `json:"step"`
	Data StepData `json:"data"`
}

func (WorkflowUpdated) EventType() string { return EventWorkflowUpdated }

// ContactInfoUpdated replaces the basic contact fields.
type ContactInfoUpdated struct {
	ClientAlias    string         `json:"client_alias"`
	ContactDate    time.Time      `json:"contact_date"`
	ReferralSource ReferralSource `json:"referral_source"`
}

func (ContactInfoUpdated) EventType() string { return EventContactInfoUpdated }

// Promoted records promotion to a full client profile.
type Promoted struct {
	ClientID   string    `json:"client_id"`
	PromotedAt time.Time `json:"promoted_at"`
}

func (Promoted) EventType() string { return EventPromoted }

// Expired records TTL expiry.
type Expired struct {
	ExpiredAt time.Time `json:"expired_at"`
}

func (Expired) EventType() string { return EventExpired }

// RegisterEvents registers all pre-intake payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventCreated, func() domain.Payload { return &Created{} })
	registry.Register(EventWorkflowUpdated, func() domain.Payload { return &WorkflowUpdated{} })
	registry.Register(EventContactInfoUpdated, func() domain.Payload { return &ContactInfoUpdated{} })
	registry.Register(EventPromoted, func() domain.Payload { return &Promoted{} })
	registry.Register(EventExpired, func() domain.Payload { return &Expired{} })
}
