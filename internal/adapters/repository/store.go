// Package repository defines the append-only audit store interface and
// its SQLite implementation. History is a time series: snapshots,
// recommendations and interventions are appended, never rewritten.
package repository

import (
	"context"
	"time"

	"github.com/tovu/retain/internal/domain/model"
)

// RiskRow is one row of the latest-snapshot listing.
type RiskRow struct {
	StudentID string     `json:"student_id"`
	FullName  string     `json:"full_name,omitempty"`
	AsOf      time.Time  `json:"as_of"`
	Score     int        `json:"score"`
	Tier      model.Tier `json:"level"`
}

// RiskEntry is one historical risk snapshot in a student timeline.
type RiskEntry struct {
	AsOf    time.Time      `json:"as_of"`
	Score   int            `json:"score"`
	Tier    model.Tier     `json:"level"`
	Reasons []model.Reason `json:"reasons"`
}

// RecommendationEntry is one historical recommendation in a timeline.
type RecommendationEntry struct {
	AsOf        time.Time      `json:"as_of"`
	Score       int            `json:"risk_score"`
	Tier        model.Tier     `json:"risk_level"`
	Priority    model.Priority `json:"priority"`
	Actions     []model.Action `json:"recommended_actions"`
	Explanation string         `json:"explanation"`
	Source      model.Source   `json:"source"`
	ModelUsed   string         `json:"model_used,omitempty"`
}

// Timeline is the full time-ordered history for one student.
type Timeline struct {
	Risks           []RiskEntry           `json:"risks"`
	Recommendations []RecommendationEntry `json:"recommendations"`
	Interventions   []model.Intervention  `json:"interventions"`
}

// Store provides append-only audit persistence plus its read side.
type Store interface {
	// UpsertStudent records or updates a profile keyed by student id.
	// Merge semantics are field-level keep-previous-if-absent.
	UpsertStudent(ctx context.Context, s model.Student) error

	// AppendSignals stores one signals observation with its source tag.
	AppendSignals(ctx context.Context, studentID string, sig model.Signals, source string) error

	// AppendRiskSnapshot stores one immutable scoring outcome.
	AppendRiskSnapshot(ctx context.Context, res model.RiskResult, asOf time.Time) error

	// AppendRecommendation stores one recommendation with the risk it
	// answered and which path produced it.
	AppendRecommendation(ctx context.Context, asOf time.Time, risk model.RiskResult, rec model.Recommendation, modelUsed string) error

	// AppendIntervention stores one human-logged intervention entry.
	AppendIntervention(ctx context.Context, iv model.Intervention) error

	// ListLatestRisks returns the newest snapshot per student, highest
	// score first.
	ListLatestRisks(ctx context.Context, limit int) ([]RiskRow, error)

	// ListLatestSignals returns the newest signals observation per
	// student, for store-backed pipeline runs.
	ListLatestSignals(ctx context.Context, limit int) ([]model.StudentRecord, error)

	// Timeline returns the full time-ordered history for a student.
	// Returns ErrNotFound for an unknown student id.
	Timeline(ctx context.Context, studentID string) (Timeline, error)

	Close() error
}
