package model

// Tier is the coarse risk band derived solely from the numeric score.
type Tier string

// Risk tiers. Boundaries are inclusive at the top of each band:
// score <= 30 is LOW, 31..60 is MEDIUM, above 60 is HIGH.
const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// Reason records one triggered rule and the evidence behind it.
type Reason struct {
	Rule        string         `json:"rule"`
	Points      int            `json:"points"`
	Evidence    map[string]any `json:"evidence"`
	Explanation string         `json:"explanation"`
}

// RiskResult is one immutable scoring outcome for a student at a point
// in time. Reasons hold exactly one entry per triggered rule, in rule
// evaluation order.
type RiskResult struct {
	StudentID string   `json:"student_id"`
	Score     int      `json:"score"`
	Tier      Tier     `json:"level"`
	Reasons   []Reason `json:"reasons"`
}
