// Package intake implements the pre-intake contact aggregate: a
// temporary, minimal-PII record that tracks the intake workflow before a
// full client profile exists. Contacts expire after a TTL so temporary
// data never persists indefinitely.
package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for pre-intake contacts.
const AggregateType = "PreIntakeContact"

// DefaultTTL is how long an unpromoted contact survives.
const DefaultTTL = 30 * 24 * time.Hour

// ReferralSource is where the contact came from.
type ReferralSource string

const (
	ReferralHotline        ReferralSource = "HOTLINE"
	ReferralWalkIn         ReferralSource = "WALK_IN"
	ReferralLawEnforcement ReferralSource = "LAW_ENFORCEMENT"
	ReferralHospital       ReferralSource = "HOSPITAL"
	ReferralPartnerAgency  ReferralSource = "PARTNER_AGENCY"
	ReferralSelf           ReferralSource = "SELF"
	ReferralOther          ReferralSource = "OTHER"
)

// StepData is the free-form data captured at one workflow step.
type StepData map[string]any

// Contact is the event-sourced pre-intake contact aggregate.
type Contact struct {
	domain.AggregateRoot

	clientAlias      string
	contactDate      time.Time
	referralSource   ReferralSource
	intakeWorkerName string

	workflowData map[int]StepData
	currentStep  int

	expiresAt        time.Time
	expired          bool
	promoted         bool
	promotedClientID string
}

// New returns an empty contact ready for replay or creation.
func New() *Contact {
	c := &Contact{workflowData: make(map[int]StepData)}
	c.AggregateRoot = domain.NewAggregateRoot(AggregateType, c.when)
	return c
}

// Create opens a new pre-intake contact with the given TTL. A zero ttl
// applies the default. The alias stands in for the client's name so no
// real PII is required at first contact.
func Create(clientAlias string, contactDate time.Time, referralSource ReferralSource,
	intakeWorkerName string, ttl time.Duration, meta domain.EventMetadata) (*Contact, error) {

	if clientAlias == "" {
		return nil, domain.NewValidationError("clientAlias", "client alias is required")
	}
	if contactDate.IsZero() {
		return nil, domain.NewValidationError("contactDate", "contact date is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := domain.Now()
	c := New()
	err := c.Apply(&Created{
		ContactID:        uuid.NewString(),
		ClientAlias:      clientAlias,
		ContactDate:      contactDate,
		ReferralSource:   referralSource,
		IntakeWorkerName: intakeWorkerName,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}, meta)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateWorkflowData records the data captured at one intake step.
func (c *Contact) UpdateWorkflowData(step int, data StepData, meta domain.EventMetadata) error {
	if err := c.guardMutable("update"); err != nil {
		return err
	}
	if step < 1 {
		return domain.NewValidationError("step", "step must be positive")
	}
	return c.Apply(&WorkflowUpdated{Step: step, Data: data}, meta)
}

// UpdateContactInfo replaces the basic contact fields.
func (c *Contact) UpdateContactInfo(clientAlias string, contactDate time.Time,
	referralSource ReferralSource, meta domain.EventMetadata) error {

	if err := c.guardMutable("update"); err != nil {
		return err
	}
	if clientAlias == "" {
		return domain.NewValidationError("clientAlias", "client alias is required")
	}
	return c.Apply(&ContactInfoUpdated{
		ClientAlias:    clientAlias,
		ContactDate:    contactDate,
		ReferralSource: referralSource,
	}, meta)
}

// MarkPromoted records promotion to a full client profile. Promotion
// is terminal.
func (c *Contact) MarkPromoted(clientID string, meta domain.EventMetadata) error {
	if c.promoted {
		return domain.NewStateError("pre-intake contact is already promoted")
	}
	if c.expired {
		return domain.NewStateError("cannot promote an expired pre-intake contact")
	}
	if clientID == "" {
		return domain.NewValidationError("clientId", "client id is required")
	}
	return c.Apply(&Promoted{ClientID: clientID, PromotedAt: domain.Now()}, meta)
}

// MarkExpired records TTL expiry. Idempotent; promoted contacts never
// expire.
func (c *Contact) MarkExpired(meta domain.EventMetadata) error {
	if c.promoted {
		return domain.NewStateError("cannot expire a promoted pre-intake contact")
	}
	if c.expired {
		return nil
	}
	return c.Apply(&Expired{ExpiredAt: domain.Now()}, meta)
}

func (c *Contact) guardMutable(action string) error {
	if c.expired {
		return domain.NewStateError("cannot %s an expired pre-intake contact", action)
	}
	if c.promoted {
		return domain.NewStateError("cannot %s a promoted pre-intake contact", action)
	}
	return nil
}

func (c *Contact) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Created:
		c.SetID(e.ContactID)
		c.clientAlias = e.ClientAlias
		c.contactDate = e.ContactDate
		c.referralSource = e.ReferralSource
		c.intakeWorkerName = e.IntakeWorkerName
		c.expiresAt = e.ExpiresAt
		c.currentStep = 1

	case *WorkflowUpdated:
		c.currentStep = e.Step
		data := make(StepData, len(e.Data))
		for k, v := range e.Data {
			data[k] = v
		}
		c.workflowData[e.Step] = data

	case *ContactInfoUpdated:
		c.clientAlias = e.ClientAlias
		c.contactDate = e.ContactDate
		c.referralSource = e.ReferralSource

	case *Promoted:
		c.promoted = true
		c.promotedClientID = e.ClientID

	case *Expired:
		c.expired = true

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// IsExpired reports whether the contact is past its TTL or marked
// expired.
func (c *Contact) IsExpired() bool {
	return c.expired || domain.Now().After(c.expiresAt)
}

// IsPromoted reports whether the contact became a full client.
func (c *Contact) IsPromoted() bool { return c.promoted }

// PromotedClientID returns the promoted client's id, empty until
// promotion.
func (c *Contact) PromotedClientID() string { return c.promotedClientID }

// ClientAlias returns the safety alias used instead of a real name.
func (c *Contact) ClientAlias() string { return c.clientAlias }

// ContactDate returns when the contact occurred.
func (c *Contact) ContactDate() time.Time { return c.contactDate }

// ReferralSource returns where the contact came from.
func (c *Contact) ReferralSource() ReferralSource { return c.referralSource }

// CurrentStep returns the most recently completed workflow step.
func (c *Contact) CurrentStep() int { return c.currentStep }

// ExpiresAt returns the TTL deadline.
func (c *Contact) ExpiresAt() time.Time { return c.expiresAt }

// StepData returns a copy of the data captured at one step.
func (c *Contact) StepData(step int) StepData {
	data, ok := c.workflowData[step]
	if !ok {
		return StepData{}
	}
	out := make(StepData, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
