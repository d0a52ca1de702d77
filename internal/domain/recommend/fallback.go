package recommend

import "github.com/tovu/retain/internal/domain/model"

// fallbackExplanation is fixed text; the fallback path never invents
// free-form prose.
const fallbackExplanation = "Fallback recommendations used because the advisory service is not configured or unavailable."

// Fallback returns the deterministic, pre-authored recommendation for a
// risk tier. It is pure, never fails, and its output always passes
// Validate; the engine relies on that to avoid a second fallback.
func Fallback(tier model.Tier) model.Recommendation {
	var priority model.Priority
	var actions []model.Action

	switch tier {
	case model.TierHigh:
		priority = model.PriorityHigh
		actions = []model.Action{
			{
				Type:      "Schedule advisor check-in within 48 hours",
				Owner:     "advisor",
				Rationale: "High rule-based risk score; human review recommended soon.",
			},
			{
				Type:      "Offer study plan and tutoring referral",
				Owner:     "advisor",
				Rationale: "Support academic recovery without punishment.",
			},
			{
				Type:      "Review academic plan (failed modules, assessments, load)",
				Owner:     "advisor",
				Rationale: "Target practical academic barriers indicated by the signals.",
			},
		}
	case model.TierMedium:
		priority = model.PriorityMedium
		actions = []model.Action{
			{
				Type:      "Advisor outreach email + optional meeting",
				Owner:     "advisor",
				Rationale: "Moderate risk; early support can prevent escalation.",
			},
			{
				Type:      "Share time-management and study resources",
				Owner:     "student",
				Rationale: "Encourage self-directed improvements.",
			},
		}
	default:
		priority = model.PriorityLow
		actions = []model.Action{
			{
				Type:      "Send positive check-in + resources",
				Owner:     "advisor",
				Rationale: "Low risk; keep supportive contact.",
			},
		}
	}

	return model.Recommendation{
		Priority:    priority,
		Actions:     actions,
		Explanation: fallbackExplanation,
		Source:      model.SourceFallback,
	}
}
