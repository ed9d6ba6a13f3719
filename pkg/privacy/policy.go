package privacy

import "fmt"

// RaceRedactionStrategy is the disclosure level applied to race data,
// ordered from most to least revealing.
type RaceRedactionStrategy string

const (
	RaceFullDisclosure RaceRedactionStrategy = "FULL_DISCLOSURE"
	RaceGeneralized    RaceRedactionStrategy = "GENERALIZED"
	RaceCategoryOnly   RaceRedactionStrategy = "CATEGORY_ONLY"
	RaceMasked         RaceRedactionStrategy = "MASKED"
	RaceAliased        RaceRedactionStrategy = "ALIASED"
	RaceHidden         RaceRedactionStrategy = "HIDDEN"
)

// EthnicityPrecision is the disclosure level applied to ethnicity data.
type EthnicityPrecision string

const (
	EthnicityFull         EthnicityPrecision = "FULL"
	EthnicityCategoryOnly EthnicityPrecision = "CATEGORY_ONLY"
	EthnicityRedacted     EthnicityPrecision = "REDACTED"
	EthnicityHidden       EthnicityPrecision = "HIDDEN"
)

// Policy maps (access context, purpose) pairs to redaction strategies for
// the universal data elements. The mapping is total: every purpose
// resolves to exactly one strategy, and a context below RESTRICTED access
// on quasi-identifiers is always HIDDEN regardless of purpose.
type Policy struct{}

// NewPolicy returns the standard policy.
func NewPolicy() *Policy { return &Policy{} }

// RaceStrategy determines the race redaction strategy for an access.
func (p *Policy) RaceStrategy(ctx *AccessContext, purpose Purpose, clientID string) RaceRedactionStrategy {
	if !ctx.HasAccess(CategoryQuasiIdentifier, AccessRestricted) {
		return RaceHidden
	}

	switch purpose {
	case PurposeDirectService:
		if ctx.HasAccess(CategoryQuasiIdentifier, AccessConfidential) {
			return RaceFullDisclosure
		}
		return RaceGeneralized
	case PurposeCaseManagement:
		if ctx.IsAssignedCaseWorker(clientID) {
			return RaceFullDisclosure
		}
		return RaceMasked
	case PurposeReporting:
		return RaceGeneralized
	case PurposeResearch:
		return RaceAliased
	case PurposeCourtOrdered:
		if ctx.HasLegalAuthorization() {
			return RaceFullDisclosure
		}
		return RaceCategoryOnly
	case PurposeAudit:
		return RaceCategoryOnly
	case PurposeEmergency:
		return RaceMasked
	case PurposeVSPSharing:
		// Victim service providers get maximum privacy.
		return RaceAliased
	case PurposeHMISExport:
		if ctx.HasAccess(CategoryQuasiIdentifier, AccessInternal) {
			return RaceGeneralized
		}
		return RaceCategoryOnly
	default:
		// Unknown purposes never disclose.
		return RaceHidden
	}
}

// EthnicityPrecision determines the ethnicity disclosure level for an access.
func (p *Policy) EthnicityPrecision(ctx *AccessContext, purpose Purpose, clientID string) EthnicityPrecision {
	if !ctx.HasAccess(CategoryQuasiIdentifier, AccessRestricted) {
		return EthnicityHidden
	}

	switch purpose {
	case PurposeDirectService:
		if ctx.HasAccess(CategoryQuasiIdentifier, AccessConfidential) {
			return EthnicityFull
		}
		return EthnicityCategoryOnly
	case PurposeCaseManagement:
		if ctx.IsAssignedCaseWorker(clientID) {
			return EthnicityFull
		}
		return EthnicityCategoryOnly
	case PurposeReporting:
		return EthnicityCategoryOnly
	case PurposeResearch:
		return EthnicityRedacted
	case PurposeCourtOrdered:
		if ctx.HasLegalAuthorization() {
			return EthnicityFull
		}
		return EthnicityCategoryOnly
	case PurposeAudit:
		return EthnicityRedacted
	case PurposeEmergency:
		return EthnicityCategoryOnly
	case PurposeVSPSharing:
		return EthnicityRedacted
	case PurposeHMISExport:
		if ctx.HasAccess(CategoryQuasiIdentifier, AccessInternal) {
			return EthnicityCategoryOnly
		}
		return EthnicityRedacted
	default:
		return EthnicityHidden
	}
}

// ShouldIncludeDemographics reports whether demographic fields belong in a
// response at all. Anonymous access and audits never include them.
func (p *Policy) ShouldIncludeDemographics(ctx *AccessContext, purpose Purpose) bool {
	if ctx.IsAnonymous() {
		return false
	}
	if purpose == PurposeAudit {
		return false
	}
	return ctx.HasAccess(CategoryQuasiIdentifier, AccessInternal)
}

// ShouldUseAliasing reports whether the purpose calls for stable aliases
// rather than plain redaction.
func (p *Policy) ShouldUseAliasing(purpose Purpose) bool {
	return purpose == PurposeResearch || purpose == PurposeVSPSharing
}

// Notice describes the controls applied, for inclusion in disclosure logs.
func (p *Policy) Notice(raceStrategy RaceRedactionStrategy, precision EthnicityPrecision) string {
	var race string
	switch raceStrategy {
	case RaceFullDisclosure:
		race = "fully disclosed"
	case RaceGeneralized:
		race = "generalized to categories"
	case RaceCategoryOnly:
		race = "reduced to known/unknown status"
	case RaceMasked:
		race = "partially masked"
	case RaceAliased:
		race = "replaced with consistent aliases"
	default:
		race = "completely hidden"
	}

	var ethnicity string
	switch precision {
	case EthnicityFull:
		ethnicity = "fully disclosed"
	case EthnicityCategoryOnly:
		ethnicity = "shown as category only"
	case EthnicityRedacted:
		ethnicity = "redacted"
	default:
		ethnicity = "completely hidden"
	}

	return fmt.Sprintf("Privacy Controls Applied: Race data is %s. Ethnicity data is %s.", race, ethnicity)
}
