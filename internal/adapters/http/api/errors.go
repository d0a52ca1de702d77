package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadLimit = errors.New("limit must be a positive integer")
	ErrBadPath  = errors.New("expected /students/{student_id}/timeline")
)
