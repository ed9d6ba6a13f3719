package enrollment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// LinkageAggregateType is the stream type name for project linkages.
const LinkageAggregateType = "ProjectLinkage"

// DefaultMaxTransitionGapDays is the default ceiling on the gap between
// a TH exit and the linked RRH move-in.
const DefaultMaxTransitionGapDays = 30

// LinkageStatus is the linkage lifecycle state.
type LinkageStatus string

const (
	LinkageStatusActive  LinkageStatus = "ACTIVE"
	LinkageStatusRevoked LinkageStatus = "REVOKED"
	LinkageStatusExpired LinkageStatus = "EXPIRED"
)

// ViolationKind distinguishes the transition constraint that failed.
type ViolationKind string

const (
	// ViolationMoveInOrdering is raised when the RRH move-in precedes
	// the TH exit.
	ViolationMoveInOrdering ViolationKind = "MOVE_IN_DATE_CONSTRAINT"

	// ViolationExcessiveGap is raised when the move-in falls too long
	// after the TH exit.
	ViolationExcessiveGap ViolationKind = "EXCESSIVE_TRANSITION_GAP"
)

// LinkageViolationError reports a TH to RRH transition constraint
// failure with the projects involved.
type LinkageViolationError struct {
	Kind         ViolationKind
	LinkageID    string
	THProjectID  string
	RRHProjectID string
	Message      string
}

func (e *LinkageViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Linkage is the event-sourced TH to RRH project linkage aggregate.
type Linkage struct {
	domain.AggregateRoot

	thProjectID     string
	rrhProjectID    string
	thHUDProjectID  string
	rrhHUDProjectID string
	thProjectName   string
	rrhProjectName  string
	effectiveDate   time.Time
	endDate         *time.Time
	status          LinkageStatus
	reason          string
	notes           string
	authorizedBy    string
}

// NewLinkage returns an empty linkage ready for replay or creation.
func NewLinkage() *Linkage {
	l := &Linkage{}
	l.AggregateRoot = domain.NewAggregateRoot(LinkageAggregateType, l.when)
	return l
}

// CreateLinkage establishes a new linkage in ACTIVE status.
func CreateLinkage(thProjectID, rrhProjectID, thHUDProjectID, rrhHUDProjectID,
	thProjectName, rrhProjectName string, effectiveDate time.Time,
	reason, authorizedBy string, meta domain.EventMetadata) (*Linkage, error) {

	if thProjectID == "" || rrhProjectID == "" {
		return nil, domain.NewValidationError("projectId", "both TH and RRH project ids are required")
	}
	if thProjectID == rrhProjectID {
		return nil, domain.NewValidationError("projectId", "a project cannot be linked to itself")
	}
	if effectiveDate.IsZero() {
		return nil, domain.NewValidationError("effectiveDate", "effective date is required")
	}

	l := NewLinkage()
	err := l.Apply(&LinkageCreated{
		LinkageID:       uuid.NewString(),
		THProjectID:     thProjectID,
		RRHProjectID:    rrhProjectID,
		THHUDProjectID:  thHUDProjectID,
		RRHHUDProjectID: rrhHUDProjectID,
		THProjectName:   thProjectName,
		RRHProjectName:  rrhProjectName,
		EffectiveDate:   effectiveDate,
		Reason:          reason,
		AuthorizedBy:    authorizedBy,
	}, meta)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Modify replaces the linkage reason and notes. Revoked linkages are
// immutable.
func (l *Linkage) Modify(newReason, newNotes, modifiedBy string, meta domain.EventMetadata) error {
	if l.status == LinkageStatusRevoked {
		return domain.NewStateError("cannot modify a revoked linkage")
	}
	return l.Apply(&LinkageModified{
		NewReason:  newReason,
		NewNotes:   newNotes,
		ModifiedBy: modifiedBy,
	}, meta)
}

// Revoke ends the linkage. Revocation is terminal.
func (l *Linkage) Revoke(revocationDate time.Time, reason, revokedBy string, meta domain.EventMetadata) error {
	if l.status == LinkageStatusRevoked {
		return domain.NewStateError("linkage is already revoked")
	}
	return l.Apply(&LinkageRevoked{
		RevocationDate: revocationDate,
		Reason:         reason,
		RevokedBy:      revokedBy,
	}, meta)
}

// IsEffective reports whether the linkage currently applies.
func (l *Linkage) IsEffective() bool {
	return l.status == LinkageStatusActive &&
		(l.endDate == nil || domain.Now().Before(*l.endDate))
}

// WasEffectiveOn reports whether the linkage applied on a given date.
// Revoked linkages are never retroactively effective.
func (l *Linkage) WasEffectiveOn(date time.Time) bool {
	if l.status == LinkageStatusRevoked {
		return false
	}
	if date.Before(l.effectiveDate) {
		return false
	}
	return l.endDate == nil || !date.After(*l.endDate)
}

// ValidateTransitionConstraints checks a TH exit / RRH move-in pair
// against the linkage rules: the move-in must not precede the exit, and
// the gap between them must not exceed maxGapDays.
func (l *Linkage) ValidateTransitionConstraints(thExitDate, rrhMoveInDate *time.Time, maxGapDays int) error {
	if !l.IsEffective() {
		return domain.NewStateError("cannot validate transition: linkage is not effective")
	}
	if thExitDate == nil {
		return domain.NewValidationError("thExitDate", "TH exit date is required for transition validation")
	}
	if rrhMoveInDate == nil {
		return domain.NewValidationError("rrhMoveInDate", "RRH move-in date is required for transition validation")
	}
	if maxGapDays <= 0 {
		maxGapDays = DefaultMaxTransitionGapDays
	}

	if rrhMoveInDate.Before(*thExitDate) {
		return &LinkageViolationError{
			Kind:         ViolationMoveInOrdering,
			LinkageID:    l.ID(),
			THProjectID:  l.thProjectID,
			RRHProjectID: l.rrhProjectID,
			Message: fmt.Sprintf("RRH move-in date (%s) cannot precede TH exit date (%s)",
				rrhMoveInDate.Format("2006-01-02"), thExitDate.Format("2006-01-02")),
		}
	}

	gapDays := int(rrhMoveInDate.Sub(*thExitDate).Hours() / 24)
	if gapDays > maxGapDays {
		return &LinkageViolationError{
			Kind:         ViolationExcessiveGap,
			LinkageID:    l.ID(),
			THProjectID:  l.thProjectID,
			RRHProjectID: l.rrhProjectID,
			Message: fmt.Sprintf("RRH move-in date (%s) is more than %d days after TH exit (%s)",
				rrhMoveInDate.Format("2006-01-02"), maxGapDays, thExitDate.Format("2006-01-02")),
		}
	}

	return nil
}

// DurationDays returns how long the linkage has been (or was) in force.
func (l *Linkage) DurationDays() int {
	end := domain.Now()
	if l.endDate != nil {
		end = *l.endDate
	}
	return int(end.Sub(l.effectiveDate).Hours() / 24)
}

func (l *Linkage) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *LinkageCreated:
		l.SetID(e.LinkageID)
		l.thProjectID = e.THProjectID
		l.rrhProjectID = e.RRHProjectID
		l.thHUDProjectID = e.THHUDProjectID
		l.rrhHUDProjectID = e.RRHHUDProjectID
		l.thProjectName = e.THProjectName
		l.rrhProjectName = e.RRHProjectName
		l.effectiveDate = e.EffectiveDate
		l.reason = e.Reason
		l.authorizedBy = e.AuthorizedBy
		l.status = LinkageStatusActive

	case *LinkageModified:
		l.reason = e.NewReason
		l.notes = e.NewNotes

	case *LinkageRevoked:
		l.status = LinkageStatusRevoked
		end := e.RevocationDate
		l.endDate = &end
		if l.notes != "" {
			l.notes += "\n"
		}
		l.notes += "REVOKED: " + e.Reason

	default:
		return domain.NewUnhandledEventError(LinkageAggregateType, payload.EventType())
	}
	return nil
}

// THProjectID returns the transitional housing project id.
func (l *Linkage) THProjectID() string { return l.thProjectID }

// RRHProjectID returns the rapid rehousing project id.
func (l *Linkage) RRHProjectID() string { return l.rrhProjectID }

// Status returns the lifecycle state.
func (l *Linkage) Status() LinkageStatus { return l.status }

// EffectiveDate returns when the linkage took effect.
func (l *Linkage) EffectiveDate() time.Time { return l.effectiveDate }

// EndDate returns when the linkage ended, nil while in force.
func (l *Linkage) EndDate() *time.Time { return l.endDate }

// Reason returns the linkage justification text.
func (l *Linkage) Reason() string { return l.reason }

// Notes returns the linkage notes, including any revocation note.
func (l *Linkage) Notes() string { return l.notes }
