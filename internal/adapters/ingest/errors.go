package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrOpenSource    = errors.New("open ingestion source failed")
	ErrMissingColumn = errors.New("required column missing")
	ErrBadRecord     = errors.New("malformed student record")
)
