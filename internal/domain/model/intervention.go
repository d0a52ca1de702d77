package model

import "time"

// Intervention is a human-logged record of an action actually taken for
// a student, distinct from a system-generated recommendation.
type Intervention struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	AsOf      time.Time `json:"as_of"`
	Type      string    `json:"intervention_type"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	Outcome   string    `json:"outcome,omitempty"`
}

// Outcome is one element of the pipeline's JSON output array: the full
// audit view of a single processed student observation.
type Outcome struct {
	AsOf           time.Time      `json:"as_of"`
	Student        Student        `json:"student"`
	Signals        Signals        `json:"signals"`
	Risk           RiskResult     `json:"risk"`
	Recommendation Recommendation `json:"recommendation"`
}
