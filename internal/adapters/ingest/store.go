package ingest

import (
	"context"
	"fmt"

	"github.com/tovu/retain/internal/domain/model"
)

// storeSourceLimit bounds a store-backed run; matches the batch sizes
// the CSV path is used with.
const storeSourceLimit = 5000

// SignalsLister is the read capability a store-backed run needs.
type SignalsLister interface {
	ListLatestSignals(ctx context.Context, limit int) ([]model.StudentRecord, error)
}

// StoreSource supplies each student's latest persisted signals, for runs
// that re-assess previously ingested observations instead of a fresh CSV.
type StoreSource struct {
	lister SignalsLister
	limit  int
}

// NewStoreSource creates a store-backed ingestion source.
func NewStoreSource(lister SignalsLister) *StoreSource {
	return &StoreSource{lister: lister, limit: storeSourceLimit}
}

// Records returns the latest signals observation per student.
func (s *StoreSource) Records(ctx context.Context) ([]model.StudentRecord, error) {
	records, err := s.lister.ListLatestSignals(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	return records, nil
}
