// Package enrollment implements the program enrollment aggregate and the
// TH to RRH project linkage aggregate.
package enrollment

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
)

const (
	EventOpened               = "enrollment.Opened"
	EventUpdated              = "enrollment.Updated"
	EventExited               = "enrollment.Exited"
	EventEpisodeLinked        = "enrollment.EpisodeLinked"
	EventDisabilitiesRecorded = "enrollment.DisabilitiesRecorded"

	EventLinkageCreated  = "linkage.Created"
	EventLinkageModified = "linkage.Modified"
	EventLinkageRevoked  = "linkage.Revoked"
)

// Opened starts a new program enrollment.
type Opened struct {
	EnrollmentID          string           `json:"enrollment_id"`
	ClientID              string           `json:"client_id"`
	ProgramID             string           `json:"program_id"`
	ProjectType           hmis.ProjectType `json:"project_type"`
	EntryDate             time.Time        `json:"entry_date"`
	RelationshipToHead    string           `json:"relationship_to_head,omitempty"`
	ResidencePriorToEntry string           `json:"residence_prior_to_entry,omitempty"`
	EntryFrom             string           `json:"entry_from,omitempty"`
	OpenedAt              time.Time        `json:"opened_at"`
}

func (Opened) EventType() string { return EventOpened }

// Updated replaces the mutable entry-assessment fields.
type Updated struct {
	RelationshipToHead    string `json:"relationship_to_head,omitempty"`
	ResidencePriorToEntry string `json:"residence_prior_to_entry,omitempty"`
	EntryFrom             string `json:"entry_from,omitempty"`
	UpdatedBy             string `json:"updated_by"`
}

func (Updated) EventType() string { return EventUpdated }

// Exited closes the enrollment with HUD exit data.
type Exited struct {
	ExitDate    time.Time `json:"exit_date"`
	ExitReason  string    `json:"exit_reason,omitempty"`
	Destination string    `json:"destination,omitempty"`
	RecordedBy  string    `json:"recorded_by"`
}

func (Exited) EventType() string { return EventExited }

// EpisodeLinked records a service episode reference on the enrollment.
type EpisodeLinked struct {
	EpisodeID string `json:"episode_id"`
}

func (EpisodeLinked) EventType() string { return EventEpisodeLinked }

// DisabilitiesRecorded captures one full set of disability responses at
// a collection stage.
type DisabilitiesRecorded struct {
	InformationDate time.Time                              `json:"information_date"`
	Stage           string                                 `json:"stage"`
	Responses       map[hmis.DisabilityType]hmis.FivePoint `json:"responses"`
	CollectedBy     string                                 `json:"collected_by"`
}

func (DisabilitiesRecorded) EventType() string { return EventDisabilitiesRecorded }

// LinkageCreated establishes a TH to RRH project linkage.
type LinkageCreated struct {
	LinkageID       string    `json:"linkage_id"`
	THProjectID     string    `json:"th_project_id"`
	RRHProjectID    string    `json:"rrh_project_id"`
	THHUDProjectID  string    `json:"th_hud_project_id,omitempty"`
	RRHHUDProjectID string    `json:"rrh_hud_project_id,omitempty"`
	THProjectName   string    `json:"th_project_name,omitempty"`
	RRHProjectName  string    `json:"rrh_project_name,omitempty"`
	EffectiveDate   time.Time `json:"effective_date"`
	Reason          string    `json:"reason,omitempty"`
	AuthorizedBy    string    `json:"authorized_by"`
}

func (LinkageCreated) EventType() string { return EventLinkageCreated }

// LinkageModified replaces the linkage reason and notes.
type LinkageModified struct {
	NewReason  string `json:"new_reason"`
	NewNotes   string `json:"new_notes"`
	ModifiedBy string `json:"modified_by"`
}

func (LinkageModified) EventType() string { return EventLinkageModified }

// LinkageRevoked ends the linkage. Revocation is terminal.
type LinkageRevoked struct {
	RevocationDate time.Time `json:"revocation_date"`
	Reason         string    `json:"reason"`
	RevokedBy      string    `json:"revoked_by"`
}

func (LinkageRevoked) EventType() string { return EventLinkageRevoked }

// RegisterEvents registers all enrollment and linkage payloads.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventOpened, func() domain.Payload { return &Opened{} })
	registry.Register(EventUpdated, func() domain.Payload { return &Updated{} })
	registry.Register(EventExited, func() domain.Payload { return &Exited{} })
	registry.Register(EventEpisodeLinked, func() domain.Payload { return &EpisodeLinked{} })
	registry.Register(EventDisabilitiesRecorded, func() domain.Payload { return &DisabilitiesRecorded{} })
	registry.Register(EventLinkageCreated, func() domain.Payload { return &LinkageCreated{} })
	registry.Register(EventLinkageModified, func() domain.Payload { return &LinkageModified{} })
	registry.Register(EventLinkageRevoked, func() domain.Payload { return &LinkageRevoked{} })
}
