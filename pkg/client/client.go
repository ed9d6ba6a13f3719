package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/privacy"
)

// AggregateType is the stream type name for clients.
const AggregateType = "Client"

// Client is the event-sourced client profile aggregate.
type Client struct {
	domain.AggregateRoot

	name      Name
	gender    Gender
	birthDate *time.Time
	status    Status
	deceased  bool
	createdAt time.Time
	closedAt  *time.Time

	races              []hmis.Race
	raceStrategy       privacy.RaceRedactionStrategy
	ethnicity          hmis.Ethnicity
	ethnicityPrecision privacy.EthnicityPrecision

	addresses        []Address
	telecoms         []ContactPoint
	householdMembers []HouseholdMember

	contactSafety *ContactSafetyPrefs
	safeAtHome    bool
	dvVictim      bool
	dvRecorded    bool
}

// New returns an empty client ready for replay or creation.
func New() *Client {
	c := &Client{}
	c.AggregateRoot = domain.NewAggregateRoot(AggregateType, c.when)
	return c
}

// Create opens a new client record in ACTIVE status.
func Create(name Name, gender Gender, birthDate *time.Time, meta domain.EventMetadata) (*Client, error) {
	if name.Family == "" && name.Given == "" {
		return nil, domain.NewValidationError("name", "a family or given name is required")
	}
	if gender == "" {
		gender = GenderUnknown
	}

	c := New()
	err := c.Apply(&Created{
		ClientID:  uuid.NewString(),
		Name:      name,
		Gender:    gender,
		BirthDate: birthDate,
		CreatedAt: domain.Now(),
	}, meta)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateDemographics replaces name, gender, and birth date.
func (c *Client) UpdateDemographics(name Name, gender Gender, birthDate *time.Time, meta domain.EventMetadata) error {
	if c.deceased {
		return domain.NewStateError("cannot update demographics of a deceased client")
	}
	if name.Family == "" && name.Given == "" {
		return domain.NewValidationError("name", "a family or given name is required")
	}
	return c.Apply(&DemographicsUpdated{Name: name, Gender: gender, BirthDate: birthDate}, meta)
}

// UpdateRace replaces the race responses and their default redaction
// strategy.
func (c *Client) UpdateRace(races []hmis.Race, strategy privacy.RaceRedactionStrategy, meta domain.EventMetadata) error {
	if strategy == "" {
		strategy = privacy.RaceFullDisclosure
	}
	return c.Apply(&RaceUpdated{Races: races, DefaultStrategy: strategy}, meta)
}

// UpdateEthnicity replaces the ethnicity response and its default
// precision.
func (c *Client) UpdateEthnicity(ethnicity hmis.Ethnicity, precision privacy.EthnicityPrecision, meta domain.EventMetadata) error {
	if ethnicity == "" {
		ethnicity = hmis.EthnicityDataNotCollected
	}
	if precision == "" {
		precision = privacy.EthnicityFull
	}
	return c.Apply(&EthnicityUpdated{Ethnicity: ethnicity, DefaultPrecision: precision}, meta)
}

// AddAddress appends an address.
func (c *Client) AddAddress(address Address, meta domain.EventMetadata) error {
	if address.Line1 == "" {
		return domain.NewValidationError("address", "address line 1 is required")
	}
	return c.Apply(&AddressAdded{Address: address}, meta)
}

// AddTelecom appends a contact point.
func (c *Client) AddTelecom(telecom ContactPoint, meta domain.EventMetadata) error {
	if telecom.Value == "" {
		return domain.NewValidationError("telecom", "contact value is required")
	}
	return c.Apply(&TelecomAdded{Telecom: telecom}, meta)
}

// AddHouseholdMember links another client into this household. Linking
// the same member twice is rejected.
func (c *Client) AddHouseholdMember(memberID, relationship string, meta domain.EventMetadata) error {
	if memberID == "" {
		return domain.NewValidationError("memberId", "member id is required")
	}
	if memberID == c.ID() {
		return domain.NewValidationError("memberId", "client cannot be a member of their own household entry")
	}
	for _, m := range c.householdMembers {
		if m.MemberID == memberID {
			return domain.NewStateError("member %s is already in the household", memberID)
		}
	}
	return c.Apply(&HouseholdMemberAdded{MemberID: memberID, Relationship: relationship}, meta)
}

// UpdateStatus moves the record to a new status. A no-op when the
// status is unchanged.
func (c *Client) UpdateStatus(newStatus Status, meta domain.EventMetadata) error {
	if newStatus == c.status {
		return nil
	}
	return c.Apply(&StatusChanged{OldStatus: c.status, NewStatus: newStatus}, meta)
}

// MarkDeceased records the client's death. Idempotent.
func (c *Client) MarkDeceased(deceasedDate time.Time, meta domain.EventMetadata) error {
	if c.deceased {
		return nil
	}
	return c.Apply(&DeceasedMarked{DeceasedDate: deceasedDate}, meta)
}

// UpdateContactSafetyPrefs replaces the contact safety preferences.
func (c *Client) UpdateContactSafetyPrefs(prefs ContactSafetyPrefs, meta domain.EventMetadata) error {
	return c.Apply(&ContactSafetyUpdated{Prefs: prefs}, meta)
}

// EnableSafeAtHome enrolls the client in address confidentiality.
// Idempotent.
func (c *Client) EnableSafeAtHome(meta domain.EventMetadata) error {
	if c.safeAtHome {
		return nil
	}
	return c.Apply(&SafeAtHomeEnabled{EnabledAt: domain.Now()}, meta)
}

// DisableSafeAtHome withdraws the client from address confidentiality.
// Idempotent.
func (c *Client) DisableSafeAtHome(meta domain.EventMetadata) error {
	if !c.safeAtHome {
		return nil
	}
	return c.Apply(&SafeAtHomeDisabled{DisabledAt: domain.Now()}, meta)
}

// RecordDVVictimStatus records whether the client is a DV victim.
func (c *Client) RecordDVVictimStatus(isDVVictim bool, meta domain.EventMetadata) error {
	if c.dvRecorded && c.dvVictim == isDVVictim {
		return nil
	}
	return c.Apply(&DVVictimStatusRecorded{IsDVVictim: isDVVictim, RecordedAt: domain.Now()}, meta)
}

func (c *Client) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Created:
		c.SetID(e.ClientID)
		c.name = e.Name
		c.gender = e.Gender
		c.birthDate = e.BirthDate
		c.status = StatusActive
		c.createdAt = e.CreatedAt
		c.raceStrategy = privacy.RaceFullDisclosure
		c.ethnicity = hmis.EthnicityDataNotCollected
		c.ethnicityPrecision = privacy.EthnicityFull

	case *DemographicsUpdated:
		c.name = e.Name
		c.gender = e.Gender
		c.birthDate = e.BirthDate

	case *RaceUpdated:
		c.races = append([]hmis.Race(nil), e.Races...)
		c.raceStrategy = e.DefaultStrategy

	case *EthnicityUpdated:
		c.ethnicity = e.Ethnicity
		c.ethnicityPrecision = e.DefaultPrecision

	case *AddressAdded:
		c.addresses = append(c.addresses, e.Address)

	case *TelecomAdded:
		c.telecoms = append(c.telecoms, e.Telecom)

	case *HouseholdMemberAdded:
		c.householdMembers = append(c.householdMembers, HouseholdMember{
			MemberID:     e.MemberID,
			Relationship: e.Relationship,
		})

	case *StatusChanged:
		c.status = e.NewStatus

	case *DeceasedMarked:
		c.deceased = true
		c.status = StatusInactive
		closed := e.DeceasedDate
		c.closedAt = &closed

	case *ContactSafetyUpdated:
		prefs := e.Prefs
		c.contactSafety = &prefs

	case *SafeAtHomeEnabled:
		c.safeAtHome = true

	case *SafeAtHomeDisabled:
		c.safeAtHome = false

	case *DVVictimStatusRecorded:
		c.dvVictim = e.IsDVVictim
		c.dvRecorded = true

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// Name returns the client's current name.
func (c *Client) Name() Name { return c.name }

// Gender returns the administrative gender.
func (c *Client) Gender() Gender { return c.gender }

// BirthDate returns the birth date if recorded.
func (c *Client) BirthDate() *time.Time { return c.birthDate }

// Status returns the lifecycle state.
func (c *Client) Status() Status { return c.status }

// IsDeceased reports whether the client has been marked deceased.
func (c *Client) IsDeceased() bool { return c.deceased }

// IsActive reports whether the record is currently active.
func (c *Client) IsActive() bool {
	return c.status == StatusActive && c.closedAt == nil
}

// Addresses returns a copy of the recorded addresses.
func (c *Client) Addresses() []Address {
	out := make([]Address, len(c.addresses))
	copy(out, c.addresses)
	return out
}

// Telecoms returns a copy of the recorded contact points.
func (c *Client) Telecoms() []ContactPoint {
	out := make([]ContactPoint, len(c.telecoms))
	copy(out, c.telecoms)
	return out
}

// HouseholdMembers returns a copy of the household links.
func (c *Client) HouseholdMembers() []HouseholdMember {
	out := make([]HouseholdMember, len(c.householdMembers))
	copy(out, c.householdMembers)
	return out
}

// ContactSafetyPrefs returns the contact safety preferences if set.
func (c *Client) ContactSafetyPrefs() *ContactSafetyPrefs {
	if c.contactSafety == nil {
		return nil
	}
	prefs := *c.contactSafety
	return &prefs
}

// IsSafeAtHomeParticipant reports address confidentiality enrollment.
func (c *Client) IsSafeAtHomeParticipant() bool { return c.safeAtHome }

// IsDVVictim reports whether the client is a recorded DV victim.
func (c *Client) IsDVVictim() bool { return c.dvVictim }

// Races returns a copy of the raw race responses. Callers outside the
// aggregate should prefer DemographicProfile.
func (c *Client) Races() []hmis.Race {
	out := make([]hmis.Race, len(c.races))
	copy(out, c.races)
	return out
}

// Ethnicity returns the raw ethnicity response.
func (c *Client) Ethnicity() hmis.Ethnicity { return c.ethnicity }
