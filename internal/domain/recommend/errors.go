package recommend

import "errors"

// Rejection reasons returned by Validate. The first failing check wins;
// no partial repair is attempted.
var (
	ErrInvalidPriority  = errors.New("priority must be LOW, MEDIUM or HIGH")
	ErrNoActions        = errors.New("recommended_actions must be a non-empty list")
	ErrIncompleteAction = errors.New("action missing type, owner or rationale")
	ErrBlankExplanation = errors.New("explanation must be a non-empty string")
)
