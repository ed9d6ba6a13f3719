package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
)

// AggregateType is the stream type name for program enrollments.
const AggregateType = "ProgramEnrollment"

// Status is the enrollment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusExited    Status = "EXITED"
	StatusCancelled Status = "CANCELLED"
)

// MaxSimultaneousDisabilities is the data quality ceiling on YES
// responses in one disability record set. More than this many
// simultaneous disabilities usually indicates a collection error.
const MaxSimultaneousDisabilities = 4

// Exit holds the HUD exit data recorded when an enrollment closes.
type Exit struct {
	ExitDate    time.Time
	ExitReason  string
	Destination string
	RecordedBy  string
}

// DisabilityRecord is one full set of disability responses.
type DisabilityRecord struct {
	InformationDate time.Time
	Stage           string
	Responses       map[hmis.DisabilityType]hmis.FivePoint
	CollectedBy     string
}

// Enrollment is the event-sourced program enrollment aggregate. Service
// episodes are referenced by id only; the episode lifecycle lives in its
// own aggregate.
type Enrollment struct {
	domain.AggregateRoot

	clientID              string
	programID             string
	projectType           hmis.ProjectType
	entryDate             time.Time
	relationshipToHead    string
	residencePriorToEntry string
	entryFrom             string
	status                Status
	episodeIDs            []string
	disabilityRecords     []DisabilityRecord
	exit                  *Exit
	openedAt              time.Time
}

// New returns an empty enrollment ready for replay or creation.
func New() *Enrollment {
	e := &Enrollment{}
	e.AggregateRoot = domain.NewAggregateRoot(AggregateType, e.when)
	return e
}

// Open starts a new enrollment in ACTIVE status.
func Open(clientID, programID string, projectType hmis.ProjectType, entryDate time.Time,
	relationshipToHead, residencePriorToEntry, entryFrom string, meta domain.EventMetadata) (*Enrollment, error) {

	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	if programID == "" {
		return nil, domain.NewValidationError("programId", "program id is required")
	}
	if entryDate.IsZero() {
		return nil, domain.NewValidationError("entryDate", "entry date is required")
	}

	e := New()
	err := e.Apply(&Opened{
		EnrollmentID:          uuid.NewString(),
		ClientID:              clientID,
		ProgramID:             programID,
		ProjectType:           projectType,
		EntryDate:             entryDate,
		RelationshipToHead:    relationshipToHead,
		ResidencePriorToEntry: residencePriorToEntry,
		EntryFrom:             entryFrom,
		OpenedAt:              domain.Now(),
	}, meta)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the entry-assessment fields. Exited enrollments are
// immutable.
func (e *Enrollment) Update(relationshipToHead, residencePriorToEntry, entryFrom, updatedBy string, meta domain.EventMetadata) error {
	if e.status == StatusExited {
		return domain.NewStateError("cannot update an exited enrollment")
	}
	return e.Apply(&Updated{
		RelationshipToHead:    relationshipToHead,
		ResidencePriorToEntry: residencePriorToEntry,
		EntryFrom:             entryFrom,
		UpdatedBy:             updatedBy,
	}, meta)
}

// LinkEpisode records a service episode reference. Duplicate links and
// links on exited enrollments are rejected.
func (e *Enrollment) LinkEpisode(episodeID string, meta domain.EventMetadata) error {
	if e.status == StatusExited {
		return domain.NewStateError("cannot link episodes to an exited enrollment")
	}
	if episodeID == "" {
		return domain.NewValidationError("episodeId", "episode id is required")
	}
	for _, id := range e.episodeIDs {
		if id == episodeID {
			return domain.NewStateError("episode %s is already linked", episodeID)
		}
	}
	return e.Apply(&EpisodeLinked{EpisodeID: episodeID}, meta)
}

// RecordDisabilities captures a full set of disability responses.
// All six disability types must be present exactly once, and at most
// MaxSimultaneousDisabilities may be YES.
func (e *Enrollment) RecordDisabilities(informationDate time.Time, stage string,
	responses map[hmis.DisabilityType]hmis.FivePoint, collectedBy string, meta domain.EventMetadata) error {

	if e.status == StatusExited {
		return domain.NewStateError("cannot record disabilities on an exited enrollment")
	}

	required := hmis.DisabilityTypes()
	if len(responses) != len(required) {
		return domain.NewValidationError("responses", "responses for all 6 disability types are required")
	}
	yes := 0
	for _, dt := range required {
		response, ok := responses[dt]
		if !ok {
			return domain.NewValidationError("responses", "missing response for "+string(dt))
		}
		switch response {
		case hmis.No, hmis.Yes, hmis.ClientDoesntKnow, hmis.ClientPrefersNotToAnswer, hmis.DataNotCollected:
		default:
			return domain.NewValidationError("responses", "invalid five-point response for "+string(dt))
		}
		if response == hmis.Yes {
			yes++
		}
	}
	if yes > MaxSimultaneousDisabilities {
		return domain.NewValidationError("responses",
			"more than 4 disabilities marked YES indicates a data collection issue")
	}

	return e.Apply(&DisabilitiesRecorded{
		InformationDate: informationDate,
		Stage:           stage,
		Responses:       responses,
		CollectedBy:     collectedBy,
	}, meta)
}

// ExitProgram closes the enrollment. An enrollment can exit only once.
func (e *Enrollment) ExitProgram(exitDate time.Time, exitReason, destination, recordedBy string, meta domain.EventMetadata) error {
	if e.status == StatusExited {
		return domain.NewStateError("enrollment is already exited")
	}
	if exitDate.IsZero() {
		return domain.NewValidationError("exitDate", "exit date is required")
	}
	if exitDate.Before(e.entryDate) {
		return domain.NewValidationError("exitDate", "exit date cannot precede entry date")
	}
	return e.Apply(&Exited{
		ExitDate:    exitDate,
		ExitReason:  exitReason,
		Destination: destination,
		RecordedBy:  recordedBy,
	}, meta)
}

func (e *Enrollment) when(payload domain.Payload) error {
	switch ev := payload.(type) {
	case *Opened:
		e.SetID(ev.EnrollmentID)
		e.clientID = ev.ClientID
		e.programID = ev.ProgramID
		e.projectType = ev.ProjectType
		e.entryDate = ev.EntryDate
		e.relationshipToHead = ev.RelationshipToHead
		e.residencePriorToEntry = ev.ResidencePriorToEntry
		e.entryFrom = ev.EntryFrom
		e.status = StatusActive
		e.openedAt = ev.OpenedAt

	case *Updated:
		e.relationshipToHead = ev.RelationshipToHead
		e.residencePriorToEntry = ev.ResidencePriorToEntry
		e.entryFrom = ev.EntryFrom

	case *EpisodeLinked:
		e.episodeIDs = append(e.episodeIDs, ev.EpisodeID)

	case *DisabilitiesRecorded:
		responses := make(map[hmis.DisabilityType]hmis.FivePoint, len(ev.Responses))
		for dt, r := range ev.Responses {
			responses[dt] = r
		}
		e.disabilityRecords = append(e.disabilityRecords, DisabilityRecord{
			InformationDate: ev.InformationDate,
			Stage:           ev.Stage,
			Responses:       responses,
			CollectedBy:     ev.CollectedBy,
		})

	case *Exited:
		e.exit = &Exit{
			ExitDate:    ev.ExitDate,
			ExitReason:  ev.ExitReason,
			Destination: ev.Destination,
			RecordedBy:  ev.RecordedBy,
		}
		e.status = StatusExited

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// ClientID returns the enrolled client's id.
func (e *Enrollment) ClientID() string { return e.clientID }

// ProgramID returns the program's id.
func (e *Enrollment) ProgramID() string { return e.programID }

// ProjectType returns the HMIS project type.
func (e *Enrollment) ProjectType() hmis.ProjectType { return e.projectType }

// EntryDate returns the enrollment entry date.
func (e *Enrollment) EntryDate() time.Time { return e.entryDate }

// Status returns the lifecycle state.
func (e *Enrollment) Status() Status { return e.status }

// IsActive reports whether the enrollment is currently active.
func (e *Enrollment) IsActive() bool { return e.status == StatusActive }

// HasExited reports whether the enrollment has been closed out.
func (e *Enrollment) HasExited() bool { return e.status == StatusExited && e.exit != nil }

// Exit returns the recorded exit data, nil while active.
func (e *Enrollment) Exit() *Exit {
	if e.exit == nil {
		return nil
	}
	exit := *e.exit
	return &exit
}

// EpisodeIDs returns a copy of the linked episode references.
func (e *Enrollment) EpisodeIDs() []string {
	out := make([]string, len(e.episodeIDs))
	copy(out, e.episodeIDs)
	return out
}

// EpisodeCount returns the number of linked service episodes.
func (e *Enrollment) EpisodeCount() int { return len(e.episodeIDs) }

// DisabilityRecords returns a copy of the recorded disability sets.
func (e *Enrollment) DisabilityRecords() []DisabilityRecord {
	out := make([]DisabilityRecord, len(e.disabilityRecords))
	copy(out, e.disabilityRecords)
	return out
}
