// Package document implements the document lifecycle aggregate: a
// required case document tracked from requirement through receipt,
// verification, and renewal.
package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for documents.
const AggregateType = "DocumentLifecycle"

// DefaultExpiryWarningDays is how far ahead a verified document counts
// as requiring renewal action.
const DefaultExpiryWarningDays = 30

// Type classifies a required document and whether it can expire.
type Type string

const (
	TypeReceipt              Type = "RECEIPT"
	TypeReleaseOfInformation Type = "ROI_RELEASE_OF_INFORMATION"
	TypeLeaseAgreement       Type = "LEASE_AGREEMENT"
	TypeBirthCertificate     Type = "BIRTH_CERTIFICATE"
	TypeIdentification       Type = "IDENTIFICATION"
	TypeIncomeVerification   Type = "INCOME_VERIFICATION"
	TypeInsuranceCard        Type = "INSURANCE_CARD"
	TypeMedicalRecords       Type = "MEDICAL_RECORDS"
	TypeCourtOrder           Type = "COURT_ORDER"
	TypeConsentForm          Type = "CONSENT_FORM"
	TypeSafetyPlan           Type = "SAFETY_PLAN"
	TypeServiceAgreement     Type = "SERVICE_AGREEMENT"
	TypeOther                Type = "OTHER"
)

// HasExpiration reports whether documents of this type expire.
func (t Type) HasExpiration() bool {
	switch t {
	case TypeReleaseOfInformation, TypeLeaseAgreement, TypeIdentification,
		TypeIncomeVerification, TypeInsuranceCard, TypeCourtOrder,
		TypeConsentForm, TypeServiceAgreement:
		return true
	}
	return false
}

// Status is the document lifecycle state.
type Status string

const (
	StatusRequired Status = "REQUIRED"
	StatusReceived Status = "RECEIVED"
	StatusVerified Status = "VERIFIED"
	StatusExpired  Status = "EXPIRED"
	StatusRejected Status = "REJECTED"
	StatusWaived   Status = "WAIVED"
)

// Document is the event-sourced document lifecycle aggregate.
type Document struct {
	domain.AggregateRoot

	clientID       string
	caseID         string
	name           string
	documentType   Type
	status         Status
	requiredDate   *time.Time
	receivedDate   *time.Time
	verifiedDate   *time.Time
	expirationDate *time.Time
	submittedBy    string
	verifiedBy     string
	notes          string
}

// New returns an empty document ready for replay or creation.
func New() *Document {
	d := &Document{}
	d.AggregateRoot = domain.NewAggregateRoot(AggregateType, d.when)
	return d
}

// Require opens a new document requirement in REQUIRED status.
func Require(clientID, caseID, name string, documentType Type,
	requiredDate, expirationDate *time.Time, requiredBy string, meta domain.EventMetadata) (*Document, error) {

	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "document name is required")
	}
	if expirationDate != nil && !documentType.HasExpiration() {
		return nil, domain.NewValidationError("expirationDate",
			"document type "+string(documentType)+" does not expire")
	}

	d := New()
	err := d.Apply(&Required{
		DocumentID:     uuid.NewString(),
		ClientID:       clientID,
		CaseID:         caseID,
		Name:           name,
		DocumentType:   documentType,
		RequiredDate:   requiredDate,
		ExpirationDate: expirationDate,
		RequiredBy:     requiredBy,
	}, meta)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// MarkReceived records receipt. Only a REQUIRED document can be
// received.
func (d *Document) MarkReceived(submittedBy, notes string, meta domain.EventMetadata) error {
	if d.status != StatusRequired {
		return domain.NewStateError("can only mark REQUIRED documents as received, status is %s", d.status)
	}
	return d.Apply(&Received{
		SubmittedBy:  submittedBy,
		Notes:        notes,
		ReceivedDate: domain.Now(),
	}, meta)
}

// MarkVerified records verification. Only a RECEIVED document can be
// verified.
func (d *Document) MarkVerified(verifiedBy, notes string, meta domain.EventMetadata) error {
	if d.status != StatusReceived {
		return domain.NewStateError("can only verify RECEIVED documents, status is %s", d.status)
	}
	return d.Apply(&Verified{
		VerifiedBy:   verifiedBy,
		Notes:        notes,
		VerifiedDate: domain.Now(),
	}, meta)
}

// MarkExpired moves a VERIFIED document to EXPIRED.
func (d *Document) MarkExpired(reason string, meta domain.EventMetadata) error {
	if d.status != StatusVerified {
		return domain.NewStateError("only VERIFIED documents can expire, status is %s", d.status)
	}
	return d.Apply(&Expired{Reason: reason, ExpiredDate: domain.Now()}, meta)
}

// Reject invalidates the document. Verified and expired documents
// cannot be rejected.
func (d *Document) Reject(reason, rejectedBy string, meta domain.EventMetadata) error {
	if d.status == StatusVerified || d.status == StatusExpired {
		return domain.NewStateError("cannot reject verified or expired documents")
	}
	if reason == "" {
		return domain.NewValidationError("reason", "rejection reason is required")
	}
	return d.Apply(&Rejected{Reason: reason, RejectedBy: rejectedBy}, meta)
}

// Waive removes the requirement. Verified documents cannot be waived.
func (d *Document) Waive(reason, waivedBy string, meta domain.EventMetadata) error {
	if d.status == StatusVerified {
		return domain.NewStateError("cannot waive verified documents")
	}
	return d.Apply(&Waived{Reason: reason, WaivedBy: waivedBy}, meta)
}

// UpdateExpiration replaces the expiration date, recording the old one.
func (d *Document) UpdateExpiration(newExpirationDate time.Time, updatedBy, reason string, meta domain.EventMetadata) error {
	if !d.documentType.HasExpiration() {
		return domain.NewStateError("document type %s does not expire", d.documentType)
	}
	return d.Apply(&ExpirationUpdated{
		PreviousExpirationDate: d.expirationDate,
		NewExpirationDate:      newExpirationDate,
		UpdatedBy:              updatedBy,
		Reason:                 reason,
	}, meta)
}

func (d *Document) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Required:
		d.SetID(e.DocumentID)
		d.clientID = e.ClientID
		d.caseID = e.CaseID
		d.name = e.Name
		d.documentType = e.DocumentType
		d.status = StatusRequired
		d.requiredDate = e.RequiredDate
		d.expirationDate = e.ExpirationDate

	case *Received:
		d.status = StatusReceived
		received := e.ReceivedDate
		d.receivedDate = &received
		d.submittedBy = e.SubmittedBy
		d.notes = e.Notes

	case *Verified:
		d.status = StatusVerified
		verified := e.VerifiedDate
		d.verifiedDate = &verified
		d.verifiedBy = e.VerifiedBy
		d.notes = e.Notes

	case *Expired:
		d.status = StatusExpired

	case *Rejected:
		d.status = StatusRejected

	case *Waived:
		d.status = StatusWaived

	case *ExpirationUpdated:
		expiry := e.NewExpirationDate
		d.expirationDate = &expiry

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// IsExpiringWithin reports whether a verified document's expiration
// falls within the next days.
func (d *Document) IsExpiringWithin(days int) bool {
	if d.expirationDate == nil || d.status != StatusVerified {
		return false
	}
	cutoff := domain.Now().AddDate(0, 0, days+1)
	return d.expirationDate.Before(cutoff)
}

// IsOverdue reports whether the document is past its required date
// while still REQUIRED, or past its expiration while VERIFIED.
func (d *Document) IsOverdue() bool {
	now := domain.Now()
	if d.status == StatusRequired && d.requiredDate != nil {
		return d.requiredDate.Before(now)
	}
	if d.status == StatusVerified && d.expirationDate != nil {
		return d.expirationDate.Before(now)
	}
	return false
}

// RequiresAction reports whether a worker needs to act on the document.
func (d *Document) RequiresAction() bool {
	return d.status == StatusRequired ||
		d.status == StatusReceived ||
		d.IsOverdue() ||
		d.IsExpiringWithin(DefaultExpiryWarningDays)
}

// ClientID returns the owning client's id.
func (d *Document) ClientID() string { return d.clientID }

// CaseID returns the owning case's id.
func (d *Document) CaseID() string { return d.caseID }

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// DocumentType returns the type.
func (d *Document) DocumentType() Type { return d.documentType }

// Status returns the lifecycle state.
func (d *Document) Status() Status { return d.status }

// ExpirationDate returns the expiration date if set.
func (d *Document) ExpirationDate() *time.Time { return d.expirationDate }

// ReceivedDate returns when the document was received, nil before then.
func (d *Document) ReceivedDate() *time.Time { return d.receivedDate }

// VerifiedDate returns when the document was verified, nil before then.
func (d *Document) VerifiedDate() *time.Time { return d.verifiedDate }
