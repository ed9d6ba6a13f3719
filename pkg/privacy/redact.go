package privacy

import (
	"sort"

	"github.com/shelterpoint/casevault/pkg/hmis"
)

// RaceControl applies a redaction strategy to a client's race responses.
type RaceControl struct {
	actual   map[hmis.Race]struct{}
	strategy RaceRedactionStrategy
	clientID string
	aliaser  *Aliaser
}

// NewRaceControl builds a control over the actual responses. The aliaser
// is only consulted for the ALIASED strategy; without one, ALIASED
// disclosures degrade to the suppressed rendering.
func NewRaceControl(actual []hmis.Race, strategy RaceRedactionStrategy, clientID string, aliaser *Aliaser) *RaceControl {
	set := make(map[hmis.Race]struct{}, len(actual))
	for _, r := range actual {
		set[r] = struct{}{}
	}
	if strategy == "" {
		strategy = RaceFullDisclosure
	}
	return &RaceControl{
		actual:   set,
		strategy: strategy,
		clientID: clientID,
		aliaser:  aliaser,
	}
}

// Redacted returns the disclosed responses under the strategy. The result
// is sorted for deterministic output. Redaction never fails open: any
// strategy that cannot be honored yields the suppressed rendering.
func (c *RaceControl) Redacted() []hmis.Race {
	switch c.strategy {
	case RaceFullDisclosure:
		return c.sortedActual()
	case RaceGeneralized:
		return c.generalized()
	case RaceCategoryOnly:
		return c.categoryOnly()
	case RaceMasked:
		return c.masked()
	case RaceAliased:
		return c.aliased()
	default:
		return []hmis.Race{hmis.RaceDataNotCollected}
	}
}

// aliased substitutes a stable pseudonymous response. A missing aliaser or
// a derivation failure degrades to the suppressed rendering.
func (c *RaceControl) aliased() []hmis.Race {
	if c.aliaser == nil {
		return []hmis.Race{hmis.RaceDataNotCollected}
	}
	alias, err := c.aliaser.AliasRace(c.clientID, c.actual)
	if err != nil {
		return []hmis.Race{hmis.RaceDataNotCollected}
	}
	return []hmis.Race{alias}
}

func (c *RaceControl) sortedActual() []hmis.Race {
	out := make([]hmis.Race, 0, len(c.actual))
	for r := range c.actual {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// generalized collapses multi-race and non-answer responses to a single
// privacy-preserving code.
func (c *RaceControl) generalized() []hmis.Race {
	if len(c.actual) == 0 {
		return []hmis.Race{hmis.RaceDataNotCollected}
	}
	for r := range c.actual {
		if !r.IsKnown() {
			return []hmis.Race{hmis.RaceClientPrefersNotToAnswer}
		}
	}
	if len(c.actual) > 1 {
		return []hmis.Race{hmis.RaceClientPrefersNotToAnswer}
	}
	return c.sortedActual()
}

// categoryOnly discloses only whether substantive data exists.
func (c *RaceControl) categoryOnly() []hmis.Race {
	for r := range c.actual {
		if r.IsKnown() {
			return []hmis.Race{hmis.RaceClientPrefersNotToAnswer}
		}
	}
	return []hmis.Race{hmis.RaceDataNotCollected}
}

// masked discloses at most one response.
func (c *RaceControl) masked() []hmis.Race {
	if len(c.actual) == 0 {
		return []hmis.Race{hmis.RaceDataNotCollected}
	}
	return c.sortedActual()[:1]
}

// EthnicityControl applies a precision level to an ethnicity response.
type EthnicityControl struct {
	actual    hmis.Ethnicity
	precision EthnicityPrecision
	clientID  string
	aliaser   *Aliaser
}

// NewEthnicityControl builds a control over the actual response.
func NewEthnicityControl(actual hmis.Ethnicity, precision EthnicityPrecision, clientID string, aliaser *Aliaser) *EthnicityControl {
	if actual == "" {
		actual = hmis.EthnicityDataNotCollected
	}
	if precision == "" {
		precision = EthnicityFull
	}
	return &EthnicityControl{
		actual:    actual,
		precision: precision,
		clientID:  clientID,
		aliaser:   aliaser,
	}
}

// Redacted returns the disclosed response under the precision level.
func (c *EthnicityControl) Redacted() hmis.Ethnicity {
	switch c.precision {
	case EthnicityFull:
		return c.actual
	case EthnicityCategoryOnly:
		if c.actual.IsKnown() {
			return hmis.EthnicityClientPrefersNotToAnswer
		}
		return c.actual
	case EthnicityRedacted:
		return hmis.EthnicityClientPrefersNotToAnswer
	default:
		return hmis.EthnicityDataNotCollected
	}
}

// Aliased returns a stable substitute response for maximum-privacy sharing.
// A missing aliaser degrades to the suppressed rendering.
func (c *EthnicityControl) Aliased() hmis.Ethnicity {
	if c.aliaser == nil {
		return hmis.EthnicityDataNotCollected
	}
	alias, err := c.aliaser.AliasEthnicity(c.clientID, c.actual)
	if err != nil {
		return hmis.EthnicityDataNotCollected
	}
	return alias
}

// StatisticalCategory returns the reporting bucket for the response under
// the precision level.
func (c *EthnicityControl) StatisticalCategory() string {
	switch c.precision {
	case EthnicityFull, EthnicityCategoryOnly:
		switch {
		case c.actual == hmis.EthnicityHispanicLatino:
			return "Hispanic/Latino"
		case c.actual == hmis.EthnicityNonHispanicLatino:
			return "Non-Hispanic/Latino"
		default:
			return "Unknown/Not Reported"
		}
	case EthnicityRedacted:
		return "Protected"
	default:
		return "N/A"
	}
}
