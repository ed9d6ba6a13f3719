package privacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleMappings() []FieldMapping {
	return []FieldMapping{
		{MappingID: "m1", SourceField: "first_name", VAWASensitive: false},
		{MappingID: "m2", SourceField: "dv_history", VAWASensitive: true, SuppressionBehavior: Suppress},
		{MappingID: "m3", SourceField: "shelter_location", VAWASensitive: true, SuppressionBehavior: AggregateOnly},
		{MappingID: "m4", SourceField: "service_dates", VAWASensitive: true, SuppressionBehavior: Redact},
	}
}

func fieldNames(mappings []FieldMapping) []string {
	names := make([]string, 0, len(mappings))
	for _, m := range mappings {
		names = append(names, m.SourceField)
	}
	return names
}

func TestVAWASuppressionMatrix(t *testing.T) {
	cases := []struct {
		name  string
		query SuppressionQuery
		want  []string
	}{
		{
			"non-victim sees everything",
			SuppressionQuery{ClientID: "c1", IsDVVictim: false},
			[]string{"first_name", "dv_history", "shelter_location", "service_dates"},
		},
		{
			"victim with consent sees everything",
			SuppressionQuery{ClientID: "c1", IsDVVictim: true, ConsentGiven: true},
			[]string{"first_name", "dv_history", "shelter_location", "service_dates"},
		},
		{
			"victim without consent individual query",
			SuppressionQuery{ClientID: "c1", IsDVVictim: true},
			[]string{"first_name", "service_dates"},
		},
		{
			"victim without consent aggregate query",
			SuppressionQuery{ClientID: "c1", IsDVVictim: true, Aggregate: true},
			[]string{"first_name", "shelter_location", "service_dates"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterForVAWAConsent(sampleMappings(), tc.query)
			assert.Equal(t, tc.want, fieldNames(got))
		})
	}
}

func TestUnsetBehaviorDefaultsToSuppress(t *testing.T) {
	mappings := []FieldMapping{
		{SourceField: "dv_history", VAWASensitive: true},
	}

	got := FilterForVAWAConsent(mappings, SuppressionQuery{IsDVVictim: true, Aggregate: true})
	assert.Empty(t, got, "missing behavior must fail closed")

	missing := ValidateMappings(mappings)
	assert.Equal(t, []string{"dv_history"}, missing)
}

func TestMappingEffectiveWindow(t *testing.T) {
	from := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	mapping := FieldMapping{SourceField: "destination", EffectiveFrom: from, EffectiveTo: to}

	assert.False(t, mapping.EffectiveOn(from.AddDate(0, 0, -1)))
	assert.True(t, mapping.EffectiveOn(from))
	assert.True(t, mapping.EffectiveOn(to))
	assert.False(t, mapping.EffectiveOn(to.AddDate(0, 0, 1)))

	open := FieldMapping{SourceField: "destination"}
	assert.True(t, open.EffectiveOn(time.Now()), "zero bounds mean always effective")
}
