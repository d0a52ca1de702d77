// Package risk computes a deterministic, explainable risk score from
// raw academic signals. No ML, no I/O: the score is the sum of
// independently evaluated rule contributions, each added at most once.
package risk

import (
	"context"
	"math"

	"github.com/tovu/retain/internal/domain/model"
)

// Rule point values.
const (
	pointsLowAttendance     = 30
	pointsGPADrop           = 25
	pointsInactivity        = 20
	pointsFailedModulesTwo  = 25
	pointsFailedModulesOne  = 15
	pointsMissedThree       = 20
	pointsMissedOne         = 10
	pointsHeavyCourseLoad   = 10
	attendanceThresholdPct  = 60.0
	gpaDropThreshold        = 0.5
	inactivityThresholdDays = 14
	heavyLoadCredits        = 21
	maxScore                = 100
)

// Tier boundaries (inclusive upper bound of each band).
const (
	lowTierMax    = 30
	mediumTierMax = 60
)

// Stable rule identifiers, referenced by audit records and dashboards.
const (
	RuleAttendance        = "attendance_lt_60"
	RuleGPADrop           = "gpa_drop_gt_0_5"
	RuleInactivity        = "lms_inactive_gt_14_days"
	RuleFailedModulesGe2  = "failed_modules_ge_2"
	RuleFailedModulesGe1  = "failed_modules_ge_1"
	RuleMissedGe3         = "missed_assessments_ge_3"
	RuleMissedGe1         = "missed_assessments_ge_1"
	RuleHeavyCourseLoad   = "course_load_credits_ge_21"
	gpaDropEvidenceDigits = 1000 // round gpa_drop evidence to 3 decimals
)

// Scorer computes a RiskResult from one student observation.
type Scorer interface {
	// Score is pure and total: it never fails on well-typed input,
	// including input with missing optional fields.
	Score(ctx context.Context, studentID string, in model.Signals) model.RiskResult
}

// RuleScorer implements Scorer with the fixed rule table. It is
// stateless and safe for concurrent use.
type RuleScorer struct{}

// NewRuleScorer creates a rule-based scorer.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// TierFor maps a clamped score onto a risk tier. Boundary values resolve
// to the lower tier: exactly 30 is LOW, exactly 60 is MEDIUM.
func TierFor(score int) model.Tier {
	switch {
	case score <= lowTierMax:
		return model.TierLow
	case score <= mediumTierMax:
		return model.TierMedium
	default:
		return model.TierHigh
	}
}

// Score evaluates the rules in fixed order: attendance, GPA trend,
// inactivity, failed modules, missed assessments, course load. Rules are
// mutually independent; the tiered rules (failed modules, missed
// assessments) contribute only their higher matching variant.
func (s *RuleScorer) Score(_ context.Context, studentID string, in model.Signals) model.RiskResult {
	score := 0
	var reasons []model.Reason

	if in.AttendancePct < attendanceThresholdPct {
		score += pointsLowAttendance
		reasons = append(reasons, model.Reason{
			Rule:        RuleAttendance,
			Points:      pointsLowAttendance,
			Evidence:    map[string]any{"attendance_pct": in.AttendancePct},
			Explanation: "Attendance below 60%.",
		})
	}

	// A missing previous GPA disables the trend rule only.
	if in.PreviousGPA != nil {
		drop := *in.PreviousGPA - in.CurrentGPA
		if drop > gpaDropThreshold {
			score += pointsGPADrop
			reasons = append(reasons, model.Reason{
				Rule:   RuleGPADrop,
				Points: pointsGPADrop,
				Evidence: map[string]any{
					"previous_gpa": *in.PreviousGPA,
					"current_gpa":  in.CurrentGPA,
					"gpa_drop":     math.Round(drop*gpaDropEvidenceDigits) / gpaDropEvidenceDigits,
				},
				Explanation: "GPA dropped by more than 0.5.",
			})
		}
	}

	if in.LMSLastActiveDays > inactivityThresholdDays {
		score += pointsInactivity
		reasons = append(reasons, model.Reason{
			Rule:        RuleInactivity,
			Points:      pointsInactivity,
			Evidence:    map[string]any{"lms_last_active_days": in.LMSLastActiveDays},
			Explanation: "No LMS activity for more than 14 days.",
		})
	}

	switch {
	case in.FailedModulesCount >= 2:
		score += pointsFailedModulesTwo
		reasons = append(reasons, model.Reason{
			Rule:        RuleFailedModulesGe2,
			Points:      pointsFailedModulesTwo,
			Evidence:    map[string]any{"failed_modules_count": in.FailedModulesCount},
			Explanation: "Two or more failed/repeated modules.",
		})
	case in.FailedModulesCount >= 1:
		score += pointsFailedModulesOne
		reasons = append(reasons, model.Reason{
			Rule:        RuleFailedModulesGe1,
			Points:      pointsFailedModulesOne,
			Evidence:    map[string]any{"failed_modules_count": in.FailedModulesCount},
			Explanation: "At least one failed/repeated module.",
		})
	}

	switch {
	case in.MissedAssessmentsCount >= 3:
		score += pointsMissedThree
		reasons = append(reasons, model.Reason{
			Rule:        RuleMissedGe3,
			Points:      pointsMissedThree,
			Evidence:    map[string]any{"missed_assessments_count": in.MissedAssessmentsCount},
			Explanation: "Missed three or more assessments.",
		})
	case in.MissedAssessmentsCount >= 1:
		score += pointsMissedOne
		reasons = append(reasons, model.Reason{
			Rule:        RuleMissedGe1,
			Points:      pointsMissedOne,
			Evidence:    map[string]any{"missed_assessments_count": in.MissedAssessmentsCount},
			Explanation: "Missed at least one assessment.",
		})
	}

	if in.CourseLoadCredits >= heavyLoadCredits {
		score += pointsHeavyCourseLoad
		reasons = append(reasons, model.Reason{
			Rule:        RuleHeavyCourseLoad,
			Points:      pointsHeavyCourseLoad,
			Evidence:    map[string]any{"course_load_credits": in.CourseLoadCredits},
			Explanation: "High course load (21+ credits).",
		})
	}

	score = clampScore(score)

	return model.RiskResult{
		StudentID: studentID,
		Score:     score,
		Tier:      TierFor(score),
		Reasons:   reasons,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
