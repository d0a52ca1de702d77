package advisory

import "errors"

// Sentinel kinds for advisory client errors. All of them are absorbed
// by the decision engine's fallback branch; none abort a batch.
var (
	ErrNotConfigured = errors.New("advisory service not configured")
	ErrCall          = errors.New("advisory call failed")
	ErrBadResponse   = errors.New("advisory response is not a valid JSON object")
)
