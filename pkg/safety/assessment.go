// Package safety implements the lethality assessment aggregate.
// Assessments apply evidence-based DV screening instruments (ODARA,
// Danger Assessment, LAP) over yes/no responses. Item weights are
// instrument-defined and fixed here; the score-to-risk cutoffs come
// from configuration so agencies can calibrate them.
package safety

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelterpoint/casevault/pkg/config"
	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for lethality assessments.
const AggregateType = "LethalityAssessment"

// Tool identifies the screening instrument.
type Tool string

const (
	ToolODARA            Tool = "ODARA"
	ToolDangerAssessment Tool = "DANGER_ASSESSMENT"
	ToolLAP              Tool = "LAP"
	ToolCustomScreening  Tool = "CUSTOM_DV_SCREENING"
)

// DisplayName returns the instrument's full name.
func (t Tool) DisplayName() string {
	switch t {
	case ToolODARA:
		return "Ontario Domestic Assault Risk Assessment"
	case ToolDangerAssessment:
		return "Danger Assessment"
	case ToolLAP:
		return "Lethality Assessment Program"
	case ToolCustomScreening:
		return "Custom DV Screening Tool"
	default:
		return string(t)
	}
}

// RiskLevel is the calibrated danger category.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskExtreme  RiskLevel = "EXTREME"
)

// Cutoffs maps a total score to a risk level. A score at or above a
// cutoff lands in that level; below Low is MINIMAL.
type Cutoffs struct {
	Extreme  int
	High     int
	Moderate int
	Low      int
}

// Level returns the risk level for a score.
func (c Cutoffs) Level(score int) RiskLevel {
	switch {
	case score >= c.Extreme:
		return RiskExtreme
	case score >= c.High:
		return RiskHigh
	case score >= c.Moderate:
		return RiskModerate
	case score >= c.Low:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// CutoffsFor returns the configured cutoffs for an instrument. LAP is
// binary and ignores cutoffs; the custom screening uses its published
// defaults.
func CutoffsFor(tool Tool, cfg config.LethalityConfig) Cutoffs {
	switch tool {
	case ToolODARA:
		return Cutoffs{Extreme: cfg.OdaraExtreme, High: cfg.OdaraHigh, Moderate: cfg.OdaraModerate, Low: cfg.OdaraLow}
	case ToolDangerAssessment:
		return Cutoffs{Extreme: cfg.DangerExtreme, High: cfg.DangerHigh, Moderate: cfg.DangerModerate, Low: cfg.DangerLow}
	default:
		return Cutoffs{Extreme: 8, High: 6, Moderate: 4, Low: 2}
	}
}

// odaraWeights are the fixed ODARA item weights.
var odaraWeights = map[string]int{
	"prior_domestic_incident":           1,
	"prior_non_domestic_incident":       1,
	"prior_failure_to_comply":           1,
	"threats_to_harm":                   2,
	"confinement_of_victim":             2,
	"victim_concern_for_future_assault": 1,
	"assault_during_pregnancy":          1,
	"children_in_home":                  1,
	"barriers_to_support":               1,
	"substance_abuse":                   1,
	"weapons_threats":                   2,
	"strangulation":                     3,
}

// dangerWeights are the fixed Danger Assessment item weights.
var dangerWeights = map[string]int{
	"increased_frequency_severity": 2,
	"threats_with_weapon":          3,
	"access_to_gun":                3,
	"threats_to_kill":              3,
	"forced_sex":                   2,
	"choking_strangulation":        3,
	"jealous_controlling":          1,
	"separation_recent":            2,
	"unemployed":                   1,
	"avoided_family_friends":       1,
}

// lapHighRiskItems make a LAP screen come back high risk when any is
// answered yes.
var lapHighRiskItems = []string{
	"gun_access",
	"threats_to_kill",
	"choking_attempt",
	"beaten_while_pregnant",
	"constant_jealousy",
	"controlling_activities",
	"drunk_high_violence",
	"forced_sex",
	"escalating_violence",
}

// immediateRiskItems require intervention regardless of total score.
var immediateRiskItems = []string{
	"threats_to_kill",
	"gun_access",
	"recent_separation",
	"choking_strangulation",
	"escalating_violence",
}

// Assessment is the event-sourced lethality assessment aggregate.
// Score and risk level are always rederived from the accumulated
// responses, never stored.
type Assessment struct {
	domain.AggregateRoot

	clientID     string
	tool         Tool
	assessorID   string
	assessorRole string
	assessedAt   time.Time

	responses map[string]bool

	recommendations      string
	immediateRiskFactors string
	completed            bool
}

// New returns an empty assessment ready for replay or creation.
func New() *Assessment {
	a := &Assessment{responses: make(map[string]bool)}
	a.AggregateRoot = domain.NewAggregateRoot(AggregateType, a.when)
	return a
}

// Begin opens a lethality assessment for a client.
func Begin(clientID string, tool Tool, assessorID, assessorRole string, meta domain.EventMetadata) (*Assessment, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	switch tool {
	case ToolODARA, ToolDangerAssessment, ToolLAP, ToolCustomScreening:
	default:
		return nil, domain.NewValidationError("tool", "unknown assessment tool")
	}
	if assessorID == "" {
		return nil, domain.NewValidationError("assessorId", "assessor id is required")
	}

	a := New()
	err := a.Apply(&AssessmentCreated{
		AssessmentID: uuid.NewString(),
		ClientID:     clientID,
		Tool:         tool,
		AssessorID:   assessorID,
		AssessorRole: assessorRole,
		CreatedAt:    domain.Now(),
	}, meta)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RecordResponse records a single screening answer.
func (a *Assessment) RecordResponse(questionID string, answer bool, meta domain.EventMetadata) error {
	return a.RecordResponses(map[string]bool{questionID: answer}, meta)
}

// RecordResponses merges a batch of screening answers.
func (a *Assessment) RecordResponses(responses map[string]bool, meta domain.EventMetadata) error {
	if a.completed {
		return domain.NewStateError("assessment is completed")
	}
	if len(responses) == 0 {
		return domain.NewValidationError("responses", "at least one response is required")
	}
	for questionID := range responses {
		if questionID == "" {
			return domain.NewValidationError("responses", "question id must not be empty")
		}
	}
	return a.Apply(&ResponsesRecorded{Responses: responses, RecordedAt: domain.Now()}, meta)
}

// AddRecommendations attaches the assessor's narrative.
func (a *Assessment) AddRecommendations(recommendations string, meta domain.EventMetadata) error {
	if a.completed {
		return domain.NewStateError("assessment is completed")
	}
	if recommendations == "" {
		return domain.NewValidationError("recommendations", "recommendations are required")
	}
	return a.Apply(&RecommendationsAdded{Recommendations: recommendations}, meta)
}

// FlagImmediateRiskFactors records risk factors observed outside the
// structured questions.
func (a *Assessment) FlagImmediateRiskFactors(factors string, meta domain.EventMetadata) error {
	if a.completed {
		return domain.NewStateError("assessment is completed")
	}
	if factors == "" {
		return domain.NewValidationError("factors", "factors are required")
	}
	return a.Apply(&RiskFactorsFlagged{Factors: factors}, meta)
}

// Complete freezes the assessment. A completed assessment accepts no
// further responses.
func (a *Assessment) Complete(meta domain.EventMetadata) error {
	if a.completed {
		return domain.NewStateError("assessment is already completed")
	}
	if len(a.responses) == 0 {
		return domain.NewStateError("cannot complete an assessment with no responses")
	}
	return a.Apply(&AssessmentCompleted{CompletedAt: domain.Now()}, meta)
}

func (a *Assessment) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *AssessmentCreated:
		a.SetID(e.AssessmentID)
		a.clientID = e.ClientID
		a.tool = e.Tool
		a.assessorID = e.AssessorID
		a.assessorRole = e.AssessorRole
		a.assessedAt = e.CreatedAt

	case *ResponsesRecorded:
		for questionID, answer := range e.Responses {
			a.responses[questionID] = answer
		}

	case *RecommendationsAdded:
		a.recommendations = e.Recommendations

	case *RiskFactorsFlagged:
		a.immediateRiskFactors = e.Factors

	case *AssessmentCompleted:
		a.completed = true

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// Score computes the instrument total from the current responses.
// Unanswered and unrecognized items contribute nothing; LAP scores 1
// when any high-risk item is yes, otherwise 0.
func (a *Assessment) Score() int {
	switch a.tool {
	case ToolODARA:
		return weightedScore(a.responses, odaraWeights)
	case ToolDangerAssessment:
		return weightedScore(a.responses, dangerWeights)
	case ToolLAP:
		for _, item := range lapHighRiskItems {
			if a.responses[item] {
				return 1
			}
		}
		return 0
	default:
		score := 0
		for _, answer := range a.responses {
			if answer {
				score++
			}
		}
		return score
	}
}

func weightedScore(responses map[string]bool, weights map[string]int) int {
	score := 0
	for item, weight := range weights {
		if responses[item] {
			score += weight
		}
	}
	return score
}

// RiskLevel maps the current score through the cutoffs. LAP is binary:
// any high-risk item makes the screen HIGH, otherwise MODERATE.
func (a *Assessment) RiskLevel(cutoffs Cutoffs) RiskLevel {
	if a.tool == ToolLAP {
		if a.Score() > 0 {
			return RiskHigh
		}
		return RiskModerate
	}
	return cutoffs.Level(a.Score())
}

// RequiresImmediateIntervention reports whether the client needs
// intervention now: an EXTREME risk level, or any immediate-risk item
// answered yes regardless of total score.
func (a *Assessment) RequiresImmediateIntervention(cutoffs Cutoffs) bool {
	if a.RiskLevel(cutoffs) == RiskExtreme {
		return true
	}
	for _, item := range immediateRiskItems {
		if a.responses[item] {
			return true
		}
	}
	return false
}

// ClientID returns the client being assessed.
func (a *Assessment) ClientID() string { return a.clientID }

// Tool returns the screening instrument in use.
func (a *Assessment) Tool() Tool { return a.tool }

// AssessorID returns who performed the assessment.
func (a *Assessment) AssessorID() string { return a.assessorID }

// AssessorRole returns the assessor's role.
func (a *Assessment) AssessorRole() string { return a.assessorRole }

// AssessedAt returns when the assessment was opened.
func (a *Assessment) AssessedAt() time.Time { return a.assessedAt }

// Responses returns a copy of the recorded answers.
func (a *Assessment) Responses() map[string]bool {
	out := make(map[string]bool, len(a.responses))
	for questionID, answer := range a.responses {
		out[questionID] = answer
	}
	return out
}

// Recommendations returns the assessor's narrative.
func (a *Assessment) Recommendations() string { return a.recommendations }

// ImmediateRiskFactors returns the flagged free-text factors.
func (a *Assessment) ImmediateRiskFactors() string { return a.immediateRiskFactors }

// IsCompleted reports whether the assessment is frozen.
func (a *Assessment) IsCompleted() bool { return a.completed }
