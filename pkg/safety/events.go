package safety

import (
	"time"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventAssessmentCreated    = "safety.AssessmentCreated"
	EventResponsesRecorded    = "safety.ResponsesRecorded"
	EventRecommendationsAdded = "safety.RecommendationsAdded"
	EventRiskFactorsFlagged   = "safety.RiskFactorsFlagged"
	EventAssessmentCompleted  = "safety.AssessmentCompleted"
)

// AssessmentCreated opens a lethality assessment.
type AssessmentCreated struct {
	AssessmentID string    `json:"assessment_id"`
	ClientID     string    `json:"client_id"`
	Tool         Tool      `json:"tool"`
	AssessorID   string    `json:"assessor_id"`
	AssessorRole string    `json:"assessor_role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AssessmentCreated) EventType() string { return EventAssessmentCreated }

// ResponsesRecorded merges answered screening questions into the
// assessment. Risk is always rederived from the full response set.
type ResponsesRecorded struct {
	Responses  map[string]bool `json:"responses"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func (ResponsesRecorded) EventType() string { return EventResponsesRecorded }

// RecommendationsAdded attaches the assessor's narrative
// recommendations.
type RecommendationsAdded struct {
	Recommendations string `json:"recommendations"`
}

func (RecommendationsAdded) EventType() string { return EventRecommendationsAdded }

// RiskFactorsFlagged records the assessor's free-text note on immediate
// risk factors observed outside the structured questions.
type RiskFactorsFlagged struct {
	Factors string `json:"factors"`
}

func (RiskFactorsFlagged) EventType() string { return EventRiskFactorsFlagged }

// AssessmentCompleted freezes the assessment.
type AssessmentCompleted struct {
	CompletedAt time.Time `json:"completed_at"`
}

func (AssessmentCompleted) EventType() string { return EventAssessmentCompleted }

// RegisterEvents registers all assessment payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventAssessmentCreated, func() domain.Payload { return &AssessmentCreated{} })
	registry.Register(EventResponsesRecorded, func() domain.Payload { return &ResponsesRecorded{} })
	registry.Register(EventRecommendationsAdded, func() domain.Payload { return &RecommendationsAdded{} })
	registry.Register(EventRiskFactorsFlagged, func() domain.Payload { return &RiskFactorsFlagged{} })
	registry.Register(EventAssessmentCompleted, func() domain.Payload { return &AssessmentCompleted{} })
}
