package client

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/privacy"
)

const (
	EventCreated                = "client.Created"
	EventDemographicsUpdated    = "client.DemographicsUpdated"
	EventRaceUpdated            = "client.RaceUpdated"
	EventEthnicityUpdated       = "client.EthnicityUpdated"
	EventAddressAdded           = "client.AddressAdded"
	EventTelecomAdded           = "client.TelecomAdded"
	EventHouseholdMemberAdded   = "client.HouseholdMemberAdded"
	EventStatusChanged          = "client.StatusChanged"
	EventDeceasedMarked         = "client.DeceasedMarked"
	EventContactSafetyUpdated   = "client.ContactSafetyUpdated"
	EventSafeAtHomeEnabled      = "client.SafeAtHomeEnabled"
	EventSafeAtHomeDisabled     = "client.SafeAtHomeDisabled"
	EventDVVictimStatusRecorded = "client.DVVictimStatusRecorded"
)

// Created opens a new client record.
type Created struct {
	ClientID  string     `json:"client_id"`
	Name      Name       `json:"name"`
	Gender    Gender     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Created) EventType() string { return EventCreated }

// DemographicsUpdated replaces name, gender, and birth date.
type DemographicsUpdated struct {
	Name      Name       `json:"name"`
	Gender    Gender     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

func (DemographicsUpdated) EventType() string { return EventDemographicsUpdated }

// RaceUpdated replaces the client's HMIS race responses along with the
// default redaction strategy for them.
type RaceUpdated struct {
	Races           []hmis.Race                   `json:"races"`
	DefaultStrategy privacy.RaceRedactionStrategy `json:"default_strategy"`
}

func (RaceUpdated) EventType() string { return EventRaceUpdated }

// EthnicityUpdated replaces the client's HMIS ethnicity response.
type EthnicityUpdated struct {
	Ethnicity        hmis.Ethnicity             `json:"ethnicity"`
	DefaultPrecision privacy.EthnicityPrecision `json:"default_precision"`
}

func (EthnicityUpdated) EventType() string { return EventEthnicityUpdated }

// AddressAdded appends an address.
type AddressAdded struct {
	Address Address `json:"address"`
}

func (AddressAdded) EventType() string { return EventAddressAdded }

// TelecomAdded appends a contact point.
type TelecomAdded struct {
	Telecom ContactPoint `json:"telecom"`
}

func (TelecomAdded) EventType() string { return EventTelecomAdded }

// HouseholdMemberAdded links a household member.
type HouseholdMemberAdded struct {
	MemberID     string `json:"member_id"`
	Relationship string `json:"relationship"`
}

func (HouseholdMemberAdded) EventType() string { return EventHouseholdMemberAdded }

// StatusChanged moves the record between lifecycle states.
type StatusChanged struct {
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

func (StatusChanged) EventType() string { return EventStatusChanged }

// DeceasedMarked records the client's death and closes the active period.
type DeceasedMarked struct {
	DeceasedDate time.Time `json:"deceased_date"`
}

func (DeceasedMarked) EventType() string { return EventDeceasedMarked }

// ContactSafetyUpdated replaces the contact safety preferences.
type ContactSafetyUpdated struct {
	Prefs ContactSafetyPrefs `json:"prefs"`
}

func (ContactSafetyUpdated) EventType() string { return EventContactSafetyUpdated }

// SafeAtHomeEnabled enrolls the client in the address confidentiality
// program.
type SafeAtHomeEnabled struct {
	EnabledAt time.Time `json:"enabled_at"`
}

func (SafeAtHomeEnabled) EventType() string { return EventSafeAtHomeEnabled }

// SafeAtHomeDisabled withdraws the client from the address
// confidentiality program.
type SafeAtHomeDisabled struct {
	DisabledAt time.Time `json:"disabled_at"`
}

func (SafeAtHomeDisabled) EventType() string { return EventSafeAtHomeDisabled }

// DVVictimStatusRecorded records whether the client is a DV victim.
// This flag drives VAWA suppression in every reporting path.
type DVVictimStatusRecorded struct {
	IsDVVictim bool      `json:"is_dv_victim"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (DVVictimStatusRecorded) EventType() string { return EventDVVictimStatusRecorded }

// RegisterEvents registers all client payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventCreated, func() domain.Payload { return &Created{} })
	registry.Register(EventDemographicsUpdated, func() domain.Payload { return &DemographicsUpdated{} })
	registry.Register(EventRaceUpdated, func() domain.Payload { return &RaceUpdated{} })
	registry.Register(EventEthnicityUpdated, func() domain.Payload { return &EthnicityUpdated{} })
	registry.Register(EventAddressAdded, func() domain.Payload { return &AddressAdded{} })
	registry.Register(EventTelecomAdded, func() domain.Payload { return &TelecomAdded{} })
	registry.Register(EventHouseholdMemberAdded, func() domain.Payload { return &HouseholdMemberAdded{} })
	registry.Register(EventStatusChanged, func() domain.Payload { return &StatusChanged{} })
	registry.Register(EventDeceasedMarked, func() domain.Payload { return &DeceasedMarked{} })
	registry.Register(EventContactSafetyUpdated, func() domain.Payload { return &ContactSafetyUpdated{} })
	registry.Register(EventSafeAtHomeEnabled, func() domain.Payload { return &SafeAtHomeEnabled{} })
	registry.Register(EventSafeAtHomeDisabled, func() domain.Payload { return &SafeAtHomeDisabled{} })
	registry.Register(EventDVVictimStatusRecorded, func() domain.Payload { return &DVVictimStatusRecorded{} })
}
