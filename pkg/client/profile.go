package client

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/privacy"
)

// DemographicProfile is the privacy-filtered projection of a client's
// demographic data for one access. Races and Ethnicity hold the
// disclosed values, never the raw responses.
type DemographicProfile struct {
	ClientID  string
	Included  bool
	Name      Name
	Gender    Gender
	BirthDate *time.Time
	Races     []hmis.Race
	Ethnicity hmis.Ethnicity
	Notice    string
}

// strategy restrictiveness, least to most. The effective strategy for a
// disclosure is the stricter of the policy's answer and the client's
// recorded default.
var raceStrategyRank = map[privacy.RaceRedactionStrategy]int{
	privacy.RaceFullDisclosure: 0,
	privacy.RaceGeneralized:    1,
	privacy.RaceMasked:         2,
	privacy.RaceCategoryOnly:   3,
	privacy.RaceAliased:        4,
	privacy.RaceHidden:         5,
}

var ethnicityPrecisionRank = map[privacy.EthnicityPrecision]int{
	privacy.EthnicityFull:         0,
	privacy.EthnicityCategoryOnly: 1,
	privacy.EthnicityRedacted:     2,
	privacy.EthnicityHidden:       3,
}

func stricterRace(a, b privacy.RaceRedactionStrategy) privacy.RaceRedactionStrategy {
	if raceStrategyRank[a] >= raceStrategyRank[b] {
		return a
	}
	return b
}

func stricterEthnicity(a, b privacy.EthnicityPrecision) privacy.EthnicityPrecision {
	if ethnicityPrecisionRank[a] >= ethnicityPrecisionRank[b] {
		return a
	}
	return b
}

// DemographicProfile builds the redacted demographic projection for an
// access context and purpose. The aliaser is consulted only when the
// resolved strategy is ALIASED; without one, aliased disclosures degrade
// to suppressed output.
func (c *Client) DemographicProfile(ctx *privacy.AccessContext, purpose privacy.Purpose,
	policy *privacy.Policy, aliaser *privacy.Aliaser) (DemographicProfile, error) {

	if !policy.ShouldIncludeDemographics(ctx, purpose) {
		return DemographicProfile{
			ClientID:  c.ID(),
			Included:  false,
			Races:     []hmis.Race{hmis.RaceDataNotCollected},
			Ethnicity: hmis.EthnicityDataNotCollected,
			Notice:    policy.Notice(privacy.RaceHidden, privacy.EthnicityHidden),
		}, nil
	}

	raceStrategy := stricterRace(policy.RaceStrategy(ctx, purpose, c.ID()), c.raceStrategy)
	precision := stricterEthnicity(policy.EthnicityPrecision(ctx, purpose, c.ID()), c.ethnicityPrecision)

	races := privacy.NewRaceControl(c.races, raceStrategy, c.ID(), aliaser).Redacted()

	ethnicityControl := privacy.NewEthnicityControl(c.ethnicity, precision, c.ID(), aliaser)
	ethnicity := ethnicityControl.Redacted()
	if precision != privacy.EthnicityHidden && policy.ShouldUseAliasing(purpose) {
		ethnicity = ethnicityControl.Aliased()
	}

	return DemographicProfile{
		ClientID:  c.ID(),
		Included:  true,
		Name:      c.name,
		Gender:    c.gender,
		BirthDate: c.birthDate,
		Races:     races,
		Ethnicity: ethnicity,
		Notice:    policy.Notice(raceStrategy, precision),
	}, nil
}
