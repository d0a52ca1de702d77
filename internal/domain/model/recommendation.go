package model

import "strings"

// Priority mirrors the risk tiers for advisor-facing triage.
type Priority string

// Recommendation priorities.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ValidPriority reports whether p is one of the three allowed values.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Source records which path produced a recommendation, for audit.
type Source string

// Recommendation sources.
const (
	SourceAdvisory Source = "advisory-service"
	SourceFallback Source = "fallback"
)

// Action is a single non-punitive step proposed to a human.
type Action struct {
	Type      string `json:"type"`
	Owner     string `json:"owner"`
	Rationale string `json:"rationale"`
}

// Complete reports whether all three required action fields are non-blank.
func (a Action) Complete() bool {
	return strings.TrimSpace(a.Type) != "" &&
		strings.TrimSpace(a.Owner) != "" &&
		strings.TrimSpace(a.Rationale) != ""
}

// Recommendation is the advisor-facing output of the decision engine.
// It never encodes a prediction or a punitive measure; a human approves
// or rejects every action.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Actions     []Action `json:"recommended_actions"`
	Explanation string   `json:"explanation"`
	Source      Source   `json:"source,omitempty"`
}

// Constraints is the fixed contract block sent to the advisory service.
// All fields must always be true; the zero value is never used.
type Constraints struct {
	NoPunishment        bool `json:"no_punishment"`
	NoDropoutPrediction bool `json:"no_dropout_prediction"`
	NoDiagnosis         bool `json:"no_diagnosis"`
	HumanInTheLoop      bool `json:"human_in_the_loop"`
}

// DefaultConstraints returns the only valid constraints block.
func DefaultConstraints() Constraints {
	return Constraints{
		NoPunishment:        true,
		NoDropoutPrediction: true,
		NoDiagnosis:         true,
		HumanInTheLoop:      true,
	}
}

// RecommendationContext is everything the decision engine, and by
// extension the advisory service, sees about one student observation.
type RecommendationContext struct {
	Student     Student     `json:"student"`
	Signals     Signals     `json:"signals"`
	Risk        RiskResult  `json:"risk"`
	Constraints Constraints `json:"constraints"`
}
