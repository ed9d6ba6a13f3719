package consent

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventGranted  = "consent.Granted"
	EventRevoked  = "consent.Revoked"
	EventUpdated  = "consent.Updated"
	EventExtended = "consent.Extended"
	EventExpired  = "consent.Expired"
)

// Granted records a new consent.
type Granted struct {
	ConsentID             string     `json:"consent_id"`
	ClientID              string     `json:"client_id"`
	Type                  Type       `json:"type"`
	Purpose               string     `json:"purpose"`
	RecipientOrganization string     `json:"recipient_organization"`
	RecipientContact      string     `json:"recipient_contact,omitempty"`
	GrantedBy             string     `json:"granted_by"`
	GrantedAt             time.Time  `json:"granted_at"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	VAWAProtected         bool       `json:"vawa_protected"`
	Limitations           string     `json:"limitations,omitempty"`
}

func (Granted) EventType() string { return EventGranted }

// Revoked withdraws a granted consent.
type Revoked struct {
	RevokedBy string    `json:"revoked_by"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (Revoked) EventType() string { return EventRevoked }

// Updated replaces limitations or recipient contact on a granted consent.
type Updated struct {
	NewLimitations      string `json:"new_limitations"`
	NewRecipientContact string `json:"new_recipient_contact"`
	UpdatedBy           string `json:"updated_by"`
}

func (Updated) EventType() string { return EventUpdated }

// Extended moves the expiration date forward.
type Extended struct {
	PreviousExpiresAt *time.Time `json:"previous_expires_at,omitempty"`
	NewExpiresAt      time.Time  `json:"new_expires_at"`
	ExtendedBy        string     `json:"extended_by"`
}

func (Extended) EventType() string { return EventExtended }

// Expired marks the consent lapsed after its expiration date passed.
type Expired struct {
	ExpiredAt time.Time `json:"expired_at"`
}

func (Expired) EventType() string { return EventExpired }

// RegisterEvents registers all consent payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventGranted, func() domain.Payload { return &Granted{} })
	registry.Register(EventRevoked, func() domain.Payload { return &Revoked{} })
	registry.Register(EventUpdated, func() domain.Payload { return &Updated{} })
	registry.Register(EventExtended, func() domain.Payload { return &Extended{} })
	registry.Register(EventExpired, func() domain.Payload { return &Expired{} })
}
