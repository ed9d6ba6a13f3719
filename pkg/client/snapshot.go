package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/privacy"
)

// snapshotState is the serialized checkpoint of a client's state. It
// must capture every field the event handler folds, so a restore
// followed by a tail replay equals a full replay.
type snapshotState struct {
	ClientID  string     `json:"client_id"`
	Name      Name       `json:"name"`
	Gender    Gender     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Status    Status     `json:"status"`
	Deceased  bool       `json:"deceased"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Races              []hmis.Race                   `json:"races,omitempty"`
	RaceStrategy       privacy.RaceRedactionStrategy `json:"race_strategy"`
	Ethnicity          hmis.Ethnicity                `json:"ethnicity"`
	EthnicityPrecision privacy.EthnicityPrecision    `json:"ethnicity_precision"`

	Addresses        []Address         `json:"addresses,omitempty"`
	Telecoms         []ContactPoint    `json:"telecoms,omitempty"`
	HouseholdMembers []HouseholdMember `json:"household_members,omitempty"`

	ContactSafety *ContactSafetyPrefs `json:"contact_safety,omitempty"`
	SafeAtHome    bool                `json:"safe_at_home"`
	DVVictim      bool                `json:"dv_victim"`
	DVRecorded    bool                `json:"dv_recorded"`
}

// SnapshotState serializes the client for use as a replay checkpoint.
func (c *Client) SnapshotState() ([]byte, error) {
	return json.Marshal(snapshotState{
		ClientID:           c.ID(),
		Name:               c.name,
		Gender:             c.gender,
		BirthDate:          c.birthDate,
		Status:             c.status,
		Deceased:           c.deceased,
		CreatedAt:          c.createdAt,
		ClosedAt:           c.closedAt,
		Races:              c.races,
		RaceStrategy:       c.raceStrategy,
		Ethnicity:          c.ethnicity,
		EthnicityPrecision: c.ethnicityPrecision,
		Addresses:          c.addresses,
		Telecoms:           c.telecoms,
		HouseholdMembers:   c.householdMembers,
		ContactSafety:      c.contactSafety,
		SafeAtHome:         c.safeAtHome,
		DVVictim:           c.dvVictim,
		DVRecorded:         c.dvRecorded,
	})
}

// RestoreSnapshot rebuilds the client from a checkpoint at the given
// version. Events after the checkpoint are replayed on top by the
// repository.
func (c *Client) RestoreSnapshot(data []byte, version int64) error {
	var state snapshotState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode client snapshot: %w", err)
	}

	c.SetID(state.ClientID)
	c.name = state.Name
	c.gender = state.Gender
	c.birthDate = state.BirthDate
	c.status = state.Status
	c.deceased = state.Deceased
	c.createdAt = state.CreatedAt
	c.closedAt = state.ClosedAt
	c.races = state.Races
	c.raceStrategy = state.RaceStrategy
	c.ethnicity = state.Ethnicity
	c.ethnicityPrecision = state.EthnicityPrecision
	c.addresses = state.Addresses
	c.telecoms = state.Telecoms
	c.householdMembers = state.HouseholdMembers
	c.contactSafety = state.ContactSafety
	c.safeAtHome = state.SafeAtHome
	c.dvVictim = state.DVVictim
	c.dvRecorded = state.DVRecorded
	c.RestoreVersion(version)

	return nil
}
