package document

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventRequired          = "document.Required"
	EventReceived          = "document.Received"
	EventVerified          = "document.Verified"
	EventExpired           = "document.Expired"
	EventRejected          = "document.Rejected"
	EventWaived            = "document.Waived"
	EventExpirationUpdated = "document.ExpirationUpdated"
)

// Required opens a document requirement.
type Required struct {
	DocumentID     string     `json:"document_id"`
	ClientID       string     `json:"client_id"`
	CaseID         string     `json:"case_id,omitempty"`
	Name           string     `json:"name"`
	DocumentType   Type       `json:"document_type"`
	RequiredDate   *time.Time `json:"required_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	RequiredBy     string     `json:"required_by"`
}

func (Required) EventType() string { return EventRequired }

// Received records document receipt.
type Received struct {
	SubmittedBy  string    `json:"submitted_by"`
	Notes        string    `json:"notes,omitempty"`
	ReceivedDate time.Time `json:"received_date"`
}

func (Received) EventType() string { return EventReceived }

// Verified records successful verification.
type Verified struct {
	VerifiedBy   string    `json:"verified_by"`
	Notes        string    `json:"notes,omitempty"`
	VerifiedDate time.Time `json:"verified_date"`
}

func (Verified) EventType() string { return EventVerified }

// Expired marks a verified document as lapsed.
type Expired struct {
	Reason      string    `json:"reason,omitempty"`
	ExpiredDate time.Time `json:"expired_date"`
}

func (Expired) EventType() string { return EventExpired }

// Rejected invalidates the submitted document.
type Rejected struct {
	Reason     string `json:"reason"`
	RejectedBy string `json:"rejected_by"`
}

func (Rejected) EventType() string { return EventRejected }

// Waived removes the requirement for this case.
type Waived struct {
	Reason   string `json:"reason,omitempty"`
	WaivedBy string `json:"waived_by"`
}

func (Waived) EventType() string { return EventWaived }

// ExpirationUpdated replaces the expiration date.
type ExpirationUpdated struct {
	PreviousExpirationDate *time.Time `json:"previous_expiration_date,omitempty"`
	NewExpirationDate      time.Time  `json:"new_expiration_date"`
	UpdatedBy              string     `json:"updated_by"`
	Reason                 string     `json:"reason,omitempty"`
}

func (ExpirationUpdated) EventType() string { return EventExpirationUpdated }

// RegisterEvents registers all document payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventRequired, func() domain.Payload { return &Required{} })
	registry.Register(EventReceived, func() domain.Payload { return &Received{} })
	registry.Register(EventVerified, func() domain.Payload { return &Verified{} })
	registry.Register(EventExpired, func() domain.Payload { return &Expired{} })
	registry.Register(EventRejected, func() domain.Payload { return &Rejected{} })
	registry.Register(EventWaived, func() domain.Payload { return &Waived{} })
	registry.Register(EventExpirationUpdated, func() domain.Payload { return &ExpirationUpdated{} })
}
