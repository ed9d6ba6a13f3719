// Package hmis defines HUD HMIS value objects shared across aggregates:
// demographic response codes, project types, disability types, and funding
// sources. Values follow the HMIS data standards; the numeric codes are the
// CSV export codes and must not drift.
package hmis

// Race is an HMIS race/ethnicity response. Clients may report multiple.
type Race string

const (
	RaceAmericanIndianAlaskaNative Race = "AMERICAN_INDIAN_ALASKA_NATIVE"
	RaceAsian                      Race = "ASIAN"
	RaceBlackAfricanAmerican       Race = "BLACK_AFRICAN_AMERICAN"
	RaceMiddleEasternNorthAfrican  Race = "MIDDLE_EASTERN_NORTH_AFRICAN"
	RaceNativeHawaiianPacific      Race = "NATIVE_HAWAIIAN_PACIFIC_ISLANDER"
	RaceWhite                      Race = "WHITE"
	RaceClientDoesntKnow           Race = "CLIENT_DOESNT_KNOW"
	RaceClientPrefersNotToAnswer   Race = "CLIENT_PREFERS_NOT_TO_ANSWER"
	RaceDataNotCollected           Race = "DATA_NOT_COLLECTED"
)

// KnownRaces lists the substantive responses, excluding the non-answer codes.
func KnownRaces() []Race {
	return []Race{
		RaceAmericanIndianAlaskaNative,
		RaceAsian,
		RaceBlackAfricanAmerican,
		RaceMiddleEasternNorthAfrican,
		RaceNativeHawaiianPacific,
		RaceWhite,
	}
}

// IsKnown reports whether the response names an actual race rather than a
// don't-know/refused/not-collected code.
func (r Race) IsKnown() bool {
	switch r {
	case RaceClientDoesntKnow, RaceClientPrefersNotToAnswer, RaceDataNotCollected, "":
		return false
	}
	return true
}

// Code returns the HMIS CSV export code.
func (r Race) Code() int {
	switch r {
	case RaceAmericanIndianAlaskaNative:
		return 1
	case RaceAsian:
		return 2
	case RaceBlackAfricanAmerican:
		return 3
	case RaceNativeHawaiianPacific:
		return 4
	case RaceWhite:
		return 5
	case RaceMiddleEasternNorthAfrican:
		return 6
	case RaceClientDoesntKnow:
		return 8
	case RaceClientPrefersNotToAnswer:
		return 9
	default:
		return 99
	}
}

// Ethnicity is the HMIS Hispanic/Latino response.
type Ethnicity string

const (
	EthnicityNonHispanicLatino        Ethnicity = "NON_HISPANIC_LATINO"
	EthnicityHispanicLatino           Ethnicity = "HISPANIC_LATINO"
	EthnicityClientDoesntKnow         Ethnicity = "CLIENT_DOESNT_KNOW"
	EthnicityClientPrefersNotToAnswer Ethnicity = "CLIENT_PREFERS_NOT_TO_ANSWER"
	EthnicityDataNotCollected         Ethnicity = "DATA_NOT_COLLECTED"
)

// IsKnown reports whether the response is a substantive answer.
func (e Ethnicity) IsKnown() bool {
	return e == EthnicityNonHispanicLatino || e == EthnicityHispanicLatino
}

// Code returns the HMIS CSV export code.
func (e Ethnicity) Code() int {
	switch e {
	case EthnicityNonHispanicLatino:
		return 0
	case EthnicityHispanicLatino:
		return 1
	case EthnicityClientDoesntKnow:
		return 8
	case EthnicityClientPrefersNotToAnswer:
		return 9
	default:
		return 99
	}
}

// FivePoint is the standard HMIS yes/no response scale used for disability
// and DV questions.
type FivePoint int

const (
	No                       FivePoint = 0
	Yes                      FivePoint = 1
	ClientDoesntKnow         FivePoint = 8
	ClientPrefersNotToAnswer FivePoint = 9
	DataNotCollected         FivePoint = 99
)

// IsAnswered reports whether the response is a substantive yes or no.
func (f FivePoint) IsAnswered() bool {
	return f == No || f == Yes
}
