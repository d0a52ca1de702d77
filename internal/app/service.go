// Package app provides the pipeline service: it drives ingestion
// through scoring, decision and persistence with a bounded worker pool.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/tovu/retain/internal/adapters/ingest"
	"github.com/tovu/retain/internal/adapters/output"
	"github.com/tovu/retain/internal/adapters/repository"
	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/internal/domain/risk"
	"github.com/tovu/retain/pkg/logger"
	"github.com/tovu/retain/pkg/metrics"
)

// ErrNoStudents means the ingestion source produced zero usable rows;
// this is a configuration error and fails the run before processing.
var ErrNoStudents = errors.New("no student records available from the ingestion source")

// Decider produces a recommendation for a scored student context. It
// never fails; the decision engine satisfies this.
type Decider interface {
	Decide(ctx context.Context, rc model.RecommendationContext) model.Recommendation
}

// Summary reports what one pipeline run did.
type Summary struct {
	Processed  int
	Failed     int
	OutputPath string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds pipeline concurrency.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithModelUsed records which advisory model produced service-sourced
// recommendations in the audit trail.
func WithModelUsed(model string) Option {
	return func(s *Service) {
		s.modelUsed = model
	}
}

// WithSignalPersistence stores each ingested signals observation before
// scoring. Enabled for fresh imports, disabled for store-backed runs to
// avoid duplicating history.
func WithSignalPersistence(enabled bool) Option {
	return func(s *Service) {
		s.persistSignals = enabled
	}
}

// Service runs the per-student pipeline. Students are independent, so
// processing is concurrent up to workerCount; the audit store
// serializes its own write path.
type Service struct {
	source  ingest.Source
	scorer  risk.Scorer
	decider Decider
	store   repository.Store
	writer  output.Writer

	workerCount    int
	modelUsed      string
	persistSignals bool

	logger logger.Logger
}

// New constructs a pipeline service.
func New(source ingest.Source, scorer risk.Scorer, decider Decider, store repository.Store, writer output.Writer, opts ...Option) *Service {
	s := &Service{
		source:      source,
		scorer:      scorer,
		decider:     decider,
		store:       store,
		writer:      writer,
		workerCount: runtime.NumCPU() * 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	return s
}

// Run processes every record from the ingestion source. Advisory
// failures never fail a student; persistence failures fail that student
// only and are aggregated into the returned error alongside the
// summary of what did succeed.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	records, err := s.source.Records(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(records) == 0 {
		return Summary{}, ErrNoStudents
	}

	metrics.UpdateWorkerCount(s.workerCount)
	s.logger.Info(ctx, "starting pipeline run",
		logger.Int("students", len(records)),
		logger.Int("workers", s.workerCount),
	)

	jobs := make(chan model.StudentRecord)
	var (
		mu       sync.Mutex
		outcomes []model.Outcome
		failures []error
		wg       sync.WaitGroup
	)

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				outcome, err := s.process(ctx, rec)
				mu.Lock()
				if err != nil {
					failures = append(failures, err)
				} else {
					outcomes = append(outcomes, outcome)
				}
				mu.Unlock()
			}
		}()
	}

	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	// Deterministic artifact order regardless of worker scheduling.
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Student.StudentID < outcomes[j].Student.StudentID
	})
	if err := s.writer.Write(outcomes); err != nil {
		failures = append(failures, err)
	}

	summary := Summary{
		Processed:  len(outcomes),
		Failed:     len(failures),
		OutputPath: outputPath(s.writer),
	}
	s.logger.Info(ctx, "pipeline run finished",
		logger.Int("processed", summary.Processed),
		logger.Int("failed", summary.Failed),
	)
	return summary, errors.Join(failures...)
}

// process runs one student through score -> decide -> persist.
func (s *Service) process(ctx context.Context, rec model.StudentRecord) (model.Outcome, error) {
	studentID := rec.Student.StudentID

	if err := s.store.UpsertStudent(ctx, rec.Student); err != nil {
		metrics.RecordStoreError("upsert_student")
		return model.Outcome{}, fmt.Errorf("student %s: %w", studentID, err)
	}
	if s.persistSignals {
		if err := s.store.AppendSignals(ctx, studentID, rec.Signals, "csv_import"); err != nil {
			metrics.RecordStoreError("append_signals")
			return model.Outcome{}, fmt.Errorf("student %s: %w", studentID, err)
		}
	}

	result := s.scorer.Score(ctx, studentID, rec.Signals)
	metrics.RecordRiskTier(string(result.Tier))

	if err := s.store.AppendRiskSnapshot(ctx, result, rec.Signals.AsOf); err != nil {
		metrics.RecordStoreError("append_snapshot")
		return model.Outcome{}, fmt.Errorf("student %s: %w", studentID, err)
	}

	rc := model.RecommendationContext{
		Student:     rec.Student,
		Signals:     rec.Signals,
		Risk:        result,
		Constraints: model.DefaultConstraints(),
	}
	recommendation := s.decider.Decide(ctx, rc)

	modelUsed := ""
	if recommendation.Source == model.SourceAdvisory {
		modelUsed = s.modelUsed
	}
	if err := s.store.AppendRecommendation(ctx, rec.Signals.AsOf, result, recommendation, modelUsed); err != nil {
		metrics.RecordStoreError("append_recommendation")
		return model.Outcome{}, fmt.Errorf("student %s: %w", studentID, err)
	}

	metrics.RecordStudentProcessed()
	s.logger.Debug(ctx, "student processed",
		logger.String("studentID", studentID),
		logger.Int("score", result.Score),
		logger.String("tier", string(result.Tier)),
		logger.String("recommendationSource", string(recommendation.Source)),
	)

	return model.Outcome{
		AsOf:           rec.Signals.AsOf,
		Student:        rec.Student,
		Signals:        rec.Signals,
		Risk:           result,
		Recommendation: recommendation,
	}, nil
}

func outputPath(w output.Writer) string {
	if fw, ok := w.(*output.FileWriter); ok {
		return fw.Path()
	}
	return ""
}
