package repository

import "errors"

// Sentinel kinds for audit store errors. Store failures mean loss of
// audit trail and are always surfaced, never swallowed.
var (
	ErrNotFound = errors.New("student not found")
	ErrStore    = errors.New("audit store operation failed")
)
