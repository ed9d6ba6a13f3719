// Package consent implements the client consent / release-of-information
// aggregate. Every data-sharing operation must be authorized by a valid
// consent; VAWA-protected consent types carry additional confidentiality
// weight downstream.
package consent

import "strings"

// Type classifies what the client is consenting to.
type Type string

const (
	InformationSharing        Type = "INFORMATION_SHARING"
	HMISParticipation         Type = "HMIS_PARTICIPATION"
	CourtTestimony            Type = "COURT_TESTIMONY"
	MedicalInformationSharing Type = "MEDICAL_INFORMATION_SHARING"
	ReferralSharing           Type = "REFERRAL_SHARING"
	ResearchParticipation     Type = "RESEARCH_PARTICIPATION"
	LegalCounselCommunication Type = "LEGAL_COUNSEL_COMMUNICATION"
	FamilyContact             Type = "FAMILY_CONTACT"
)

// IsTimeless reports whether the consent type never expires.
func (t Type) IsTimeless() bool {
	return t == LegalCounselCommunication
}

// IsVAWAProtected reports whether the type falls under VAWA special
// protections.
func (t Type) IsVAWAProtected() bool {
	return t == CourtTestimony || t == LegalCounselCommunication || t == FamilyContact
}

// authorizesOperation checks the operation keyword rules for this type.
func (t Type) authorizesOperation(operation string) bool {
	op := strings.ToLower(operation)
	has := func(s string) bool { return strings.Contains(op, s) }
	switch t {
	case InformationSharing:
		return has("share") || has("export")
	case HMISParticipation:
		return has("hmis") || has("report")
	case CourtTestimony:
		return has("court") || has("legal")
	case MedicalInformationSharing:
		return has("medical") || has("health")
	case ReferralSharing:
		return has("referral") || has("transfer")
	case ResearchParticipation:
		return has("research") || has("evaluation")
	default:
		return false
	}
}

// Status is the consent lifecycle state.
type Status string

const (
	StatusGranted Status = "GRANTED"
	StatusRevoked Status = "REVOKED"
	StatusExpired Status = "EXPIRED"
)
