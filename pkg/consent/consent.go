package consent

import (
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for consents.
const AggregateType = "Consent"

// DefaultDurationMonths is the expiry window applied when a grant does
// not specify one. Consent durations are counted in 30-day months.
const DefaultDurationMonths = 12

const daysPerMonth = 30

// ErrConsentNotFound indicates a lookup referenced a consent that does
// not exist. Callers map this to not-found rather than invalid-input.
var ErrConsentNotFound = errors.New("consent not found")

// Consent is the event-sourced consent aggregate.
type Consent struct {
	domain.AggregateRoot

	clientID              string
	consentType           Type
	purpose               string
	recipientOrganization string
	recipientContact      string
	status                Status
	grantedBy             string
	grantedAt             time.Time
	expiresAt             *time.Time
	vawaProtected         bool
	limitations           string
	revocationReason      string
}

// New returns an empty consent ready for replay or creation.
func New() *Consent {
	c := &Consent{}
	c.AggregateRoot = domain.NewAggregateRoot(AggregateType, c.when)
	return c
}

// GrantCommand carries the inputs to grant a new consent.
// DurationMonths of zero applies the default; timeless types never
// expire regardless of the duration given.
type GrantCommand struct {
	ClientID              string `valid:"required,uuid"`
	Type                  Type   `valid:"required"`
	Purpose               string `valid:"required"`
	RecipientOrganization string `valid:"required"`
	RecipientContact      string `valid:"-"`
	GrantedBy             string `valid:"required"`
	DurationMonths        int    `valid:"-"`
	Limitations           string `valid:"-"`
}

// Grant creates a new consent in GRANTED status.
func Grant(cmd GrantCommand, meta domain.EventMetadata) (*Consent, error) {
	if _, err := govalidator.ValidateStruct(cmd); err != nil {
		return nil, domain.NewValidationError("grant", err.Error())
	}
	if cmd.DurationMonths < 0 {
		return nil, domain.NewValidationError("durationMonths", "duration must not be negative")
	}

	grantedAt := domain.Now()
	var expiresAt *time.Time
	if !cmd.Type.IsTimeless() {
		months := cmd.DurationMonths
		if months == 0 {
			months = DefaultDurationMonths
		}
		expiry := grantedAt.Add(time.Duration(months) * daysPerMonth * 24 * time.Hour)
		expiresAt = &expiry
	}

	c := New()
	err := c.Apply(&Granted{
		ConsentID:             uuid.NewString(),
		ClientID:              cmd.ClientID,
		Type:                  cmd.Type,
		Purpose:               cmd.Purpose,
		RecipientOrganization: cmd.RecipientOrganization,
		RecipientContact:      cmd.RecipientContact,
		GrantedBy:             cmd.GrantedBy,
		GrantedAt:             grantedAt,
		ExpiresAt:             expiresAt,
		VAWAProtected:         cmd.Type.IsVAWAProtected(),
		Limitations:           cmd.Limitations,
	}, meta)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Revoke withdraws the consent. Only granted consents can be revoked.
func (c *Consent) Revoke(revokedBy, reason string, meta domain.EventMetadata) error {
	if c.status != StatusGranted {
		return domain.NewStateError("cannot revoke consent in status %s", c.status)
	}
	if reason == "" {
		return domain.NewValidationError("reason", "revocation reason is required")
	}
	return c.Apply(&Revoked{
		RevokedBy: revokedBy,
		Reason:    reason,
		RevokedAt: domain.Now(),
	}, meta)
}

// Update replaces the limitations and recipient contact. Only granted
// consents can be updated.
func (c *Consent) Update(newLimitations, newRecipientContact, updatedBy string, meta domain.EventMetadata) error {
	if c.status != StatusGranted {
		return domain.NewStateError("cannot update consent in status %s", c.status)
	}
	return c.Apply(&Updated{
		NewLimitations:      newLimitations,
		NewRecipientContact: newRecipientContact,
		UpdatedBy:           updatedBy,
	}, meta)
}

// Extend moves the expiration date forward. The new date must be in
// the future and only granted consents can be extended.
func (c *Consent) Extend(newExpiresAt time.Time, extendedBy string, meta domain.EventMetadata) error {
	if c.status != StatusGranted {
		return domain.NewStateError("cannot extend consent in status %s", c.status)
	}
	if !newExpiresAt.After(domain.Now()) {
		return domain.NewValidationError("expiresAt", "new expiration date must be in the future")
	}
	return c.Apply(&Extended{
		PreviousExpiresAt: c.expiresAt,
		NewExpiresAt:      newExpiresAt,
		ExtendedBy:        extendedBy,
	}, meta)
}

// ExpireIfNeeded emits an Expired event when a granted consent's
// expiration date has passed. It reports whether the consent expired.
func (c *Consent) ExpireIfNeeded(meta domain.EventMetadata) (bool, error) {
	if c.status != StatusGranted || !c.IsExpired() {
		return false, nil
	}
	err := c.Apply(&Expired{ExpiredAt: domain.Now()}, meta)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Consent) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Granted:
		c.SetID(e.ConsentID)
		c.clientID = e.ClientID
		c.consentType = e.Type
		c.purpose = e.Purpose
		c.recipientOrganization = e.RecipientOrganization
		c.recipientContact = e.RecipientContact
		c.status = StatusGranted
		c.grantedBy = e.GrantedBy
		c.grantedAt = e.GrantedAt
		c.expiresAt = e.ExpiresAt
		c.vawaProtected = e.VAWAProtected
		c.limitations = e.Limitations

	case *Revoked:
		c.status = StatusRevoked
		c.revocationReason = e.Reason

	case *Updated:
		c.limitations = e.NewLimitations
		c.recipientContact = e.NewRecipientContact

	case *Extended:
		expiry := e.NewExpiresAt
		c.expiresAt = &expiry

	case *Expired:
		c.status = StatusExpired

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// IsExpired reports whether the expiration date has passed. Timeless
// consents never expire.
func (c *Consent) IsExpired() bool {
	if c.expiresAt == nil {
		return false
	}
	return domain.Now().After(*c.expiresAt)
}

// IsValidForUse reports whether the consent currently authorizes any
// sharing at all.
func (c *Consent) IsValidForUse() bool {
	return c.status == StatusGranted && !c.IsExpired()
}

// Authorizes reports whether this consent covers the given operation
// for the given recipient. The recipient must match the consented
// organization and the operation must fall under the consent type's
// scope.
func (c *Consent) Authorizes(operation, recipient string) bool {
	if !c.IsValidForUse() {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(recipient), strings.TrimSpace(c.recipientOrganization)) {
		return false
	}
	return c.consentType.authorizesOperation(operation)
}

// ClientID returns the consenting client's id.
func (c *Consent) ClientID() string { return c.clientID }

// ConsentType returns the consent type.
func (c *Consent) ConsentType() Type { return c.consentType }

// Purpose returns the stated purpose of the consent.
func (c *Consent) Purpose() string { return c.purpose }

// RecipientOrganization returns the organization consented to.
func (c *Consent) RecipientOrganization() string { return c.recipientOrganization }

// Status returns the lifecycle state.
func (c *Consent) Status() Status { return c.status }

// GrantedAt returns when the consent was granted.
func (c *Consent) GrantedAt() time.Time { return c.grantedAt }

// ExpiresAt returns the expiration date, nil for timeless consents.
func (c *Consent) ExpiresAt() *time.Time { return c.expiresAt }

// VAWAProtected reports whether the consent type carries VAWA
// protections.
func (c *Consent) VAWAProtected() bool { return c.vawaProtected }

// Limitations returns any client-imposed limitations text.
func (c *Consent) Limitations() string { return c.limitations }
