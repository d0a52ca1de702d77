// Package recommend holds the output contract for recommendations: the
// validator every candidate must pass and the deterministic fallback
// policy used when the advisory service cannot produce a valid one.
package recommend

import (
	"fmt"
	"strings"

	"github.com/tovu/retain/internal/domain/model"
)

// Candidate is an untrusted recommendation as decoded from the advisory
// service. Field types are loose on purpose; Validate narrows them.
type Candidate struct {
	Priority    string   `json:"priority"`
	Actions     []Action `json:"recommended_actions"`
	Explanation string   `json:"explanation"`
}

// Action mirrors model.Action for candidate decoding.
type Action struct {
	Type      string `json:"type"`
	Owner     string `json:"owner"`
	Rationale string `json:"rationale"`
}

// Validate checks a candidate against the output contract and returns a
// normalized Recommendation. Checks run in a fixed order: priority enum,
// non-empty action list, per-action required fields, non-blank
// explanation. Any failure is a full rejection.
func Validate(c Candidate) (model.Recommendation, error) {
	priority := model.Priority(c.Priority)
	if !model.ValidPriority(priority) {
		return model.Recommendation{}, fmt.Errorf("%w: %q", ErrInvalidPriority, c.Priority)
	}
	if len(c.Actions) == 0 {
		return model.Recommendation{}, ErrNoActions
	}
	actions := make([]model.Action, len(c.Actions))
	for i, a := range c.Actions {
		action := model.Action{
			Type:      strings.TrimSpace(a.Type),
			Owner:     strings.TrimSpace(a.Owner),
			Rationale: strings.TrimSpace(a.Rationale),
		}
		if !action.Complete() {
			return model.Recommendation{}, fmt.Errorf("%w: action %d", ErrIncompleteAction, i)
		}
		actions[i] = action
	}
	explanation := strings.TrimSpace(c.Explanation)
	if explanation == "" {
		return model.Recommendation{}, ErrBlankExplanation
	}
	return model.Recommendation{
		Priority:    priority,
		Actions:     actions,
		Explanation: explanation,
	}, nil
}
