package hmis

// ProjectType is the HMIS continuum project type.
type ProjectType string

const (
	ProjectEmergencyShelter       ProjectType = "EMERGENCY_SHELTER"
	ProjectTransitionalHousing    ProjectType = "TRANSITIONAL_HOUSING"
	ProjectPermanentSupportive    ProjectType = "PH_PERMANENT_SUPPORTIVE_HOUSING"
	ProjectRapidRehousing         ProjectType = "PH_RAPID_REHOUSING"
	ProjectStreetOutreach         ProjectType = "STREET_OUTREACH"
	ProjectServicesOnly           ProjectType = "SERVICES_ONLY"
	ProjectDayShelter             ProjectType = "DAY_SHELTER"
	ProjectHomelessnessPrevention ProjectType = "HOMELESSNESS_PREVENTION"
	ProjectCoordinatedEntry       ProjectType = "COORDINATED_ENTRY"
)

// IsPermanentHousing reports whether the project type is a PH destination.
func (p ProjectType) IsPermanentHousing() bool {
	return p == ProjectPermanentSupportive || p == ProjectRapidRehousing
}

// DisabilityType enumerates the six HMIS disability data elements. Every
// enrollment record carries exactly one response per type.
type DisabilityType string

const (
	DisabilityPhysical      DisabilityType = "PHYSICAL"
	DisabilityDevelopmental DisabilityType = "DEVELOPMENTAL"
	DisabilityChronicHealth DisabilityType = "CHRONIC_HEALTH_CONDITION"
	DisabilityHIVAIDS       DisabilityType = "HIV_AIDS"
	DisabilityMentalHealth  DisabilityType = "MENTAL_HEALTH_DISORDER"
	DisabilitySubstanceUse  DisabilityType = "SUBSTANCE_USE_DISORDER"
)

// DisabilityTypes returns all six types in canonical order.
func DisabilityTypes() []DisabilityType {
	return []DisabilityType{
		DisabilityPhysical,
		DisabilityDevelopmental,
		DisabilityChronicHealth,
		DisabilityHIVAIDS,
		DisabilityMentalHealth,
		DisabilitySubstanceUse,
	}
}

// FundingSource identifies the grant stream paying for a service or
// assistance entry.
type FundingSource string

const (
	FundingHUDCoC     FundingSource = "HUD_COC"
	FundingHUDESG     FundingSource = "HUD_ESG"
	FundingHHSFVPSA   FundingSource = "HHS_FVPSA"
	FundingDOJOVW     FundingSource = "DOJ_OVW"
	FundingVAWA       FundingSource = "VAWA"
	FundingStateGrant FundingSource = "STATE_GRANT"
	FundingPrivate    FundingSource = "PRIVATE"
)

// ServiceType categorizes delivered services.
type ServiceType string

const (
	ServiceCaseManagement      ServiceType = "CASE_MANAGEMENT"
	ServiceCounseling          ServiceType = "COUNSELING"
	ServiceLegalAdvocacy       ServiceType = "LEGAL_ADVOCACY"
	ServiceSafetyPlanning      ServiceType = "SAFETY_PLANNING"
	ServiceHousingSearch       ServiceType = "HOUSING_SEARCH"
	ServiceTransportation      ServiceType = "TRANSPORTATION"
	ServiceChildcare           ServiceType = "CHILDCARE"
	ServiceFinancialAssistance ServiceType = "FINANCIAL_ASSISTANCE"
)
