package privacy

import "time"

// SuppressionBehavior controls how a VAWA-sensitive report field behaves
// when a DV victim has not consented to its disclosure.
type SuppressionBehavior string

const (
	// Suppress excludes the field from all output.
	Suppress SuppressionBehavior = "SUPPRESS"

	// AggregateOnly allows the field in aggregate counts but never in
	// individual records.
	AggregateOnly SuppressionBehavior = "AGGREGATE_ONLY"

	// Redact includes the field with its value replaced downstream.
	Redact SuppressionBehavior = "REDACT"
)

// FieldMapping maps an internal field to a HUD reporting element, carrying
// the VAWA sensitivity flags that drive suppression.
type FieldMapping struct {
	MappingID           string
	SourceField         string
	SourceEntity        string
	TargetHUDElementID  string
	TargetDataType      string
	CSVFieldName        string
	Required            bool
	VAWASensitive       bool
	SuppressionBehavior SuppressionBehavior
	EffectiveFrom       time.Time
	EffectiveTo         time.Time
}

// EffectiveOn reports whether the mapping applies on the given date.
func (m FieldMapping) EffectiveOn(date time.Time) bool {
	if !m.EffectiveFrom.IsZero() && date.Before(m.EffectiveFrom) {
		return false
	}
	if !m.EffectiveTo.IsZero() && date.After(m.EffectiveTo) {
		return false
	}
	return true
}

// SuppressionQuery describes the disclosure situation a field filter runs
// under.
type SuppressionQuery struct {
	ClientID     string
	IsDVVictim   bool
	ConsentGiven bool

	// Aggregate marks an aggregate-statistics query, which AGGREGATE_ONLY
	// fields may appear in.
	Aggregate bool
}

// FilterForVAWAConsent returns the mappings permitted under the query.
// Non-sensitive fields always pass; sensitive fields pass for non-victims
// or with consent; otherwise the suppression behavior decides, defaulting
// to SUPPRESS when unset.
func FilterForVAWAConsent(mappings []FieldMapping, q SuppressionQuery) []FieldMapping {
	permitted := make([]FieldMapping, 0, len(mappings))
	for _, mapping := range mappings {
		if includeMapping(mapping, q) {
			permitted = append(permitted, mapping)
		}
	}
	return permitted
}

func includeMapping(mapping FieldMapping, q SuppressionQuery) bool {
	if !mapping.VAWASensitive {
		return true
	}
	if !q.IsDVVictim {
		return true
	}
	if q.ConsentGiven {
		return true
	}

	switch mapping.SuppressionBehavior {
	case Suppress:
		return false
	case AggregateOnly:
		return q.Aggregate
	case Redact:
		return true
	default:
		return false
	}
}

// ValidateMappings reports sensitive mappings missing a suppression
// behavior; such mappings would silently default to SUPPRESS at query
// time, which is safe but usually a configuration mistake.
func ValidateMappings(mappings []FieldMapping) []string {
	var missing []string
	for _, mapping := range mappings {
		if mapping.VAWASensitive && mapping.SuppressionBehavior == "" {
			missing = append(missing, mapping.SourceField)
		}
	}
	return missing
}
