// Package ingest supplies ordered student records to the pipeline and
// owns the tolerant coercion of possibly-missing numeric fields, so the
// scorer downstream can stay a pure, total function.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/pkg/logger"
	"github.com/tovu/retain/pkg/metrics"
)

// Source yields the ordered sequence of student records for one run.
type Source interface {
	// Records returns all well-formed records. Malformed rows are
	// skipped and logged; they never abort the batch.
	Records(ctx context.Context) ([]model.StudentRecord, error)
}

// Required columns. Rows missing any of these are rejected.
const (
	ColStudentID         = "student_id"
	ColCurrentGPA        = "current_gpa"
	ColAttendancePct     = "attendance_pct"
	ColLMSLastActiveDays = "lms_last_active_days"
)

// Optional columns, coerced to defaults when absent or blank.
const (
	ColFullName          = "full_name"
	ColMajor             = "major"
	ColYearLevel         = "year_level"
	ColPreviousGPA       = "previous_gpa"
	ColFailedModules     = "failed_modules_count"
	ColMissedAssessments = "missed_assessments_count"
	ColCourseLoadCredits = "course_load_credits"
)

// Option applies a configuration option to the CSVSource.
type Option func(*CSVSource)

// WithAsOf fixes the observation timestamp for all records of a run.
func WithAsOf(t time.Time) Option {
	return func(s *CSVSource) {
		if !t.IsZero() {
			s.asOf = t
		}
	}
}

// WithLogger sets a custom logger for the source.
func WithLogger(log logger.Logger) Option {
	return func(s *CSVSource) {
		if log != nil {
			s.logger = log
		}
	}
}

// CSVSource reads header-mapped student rows from a CSV file.
type CSVSource struct {
	path   string
	asOf   time.Time
	logger logger.Logger
}

// NewCSVSource creates a CSV ingestion source for path.
func NewCSVSource(path string, opts ...Option) *CSVSource {
	s := &CSVSource{
		path: path,
		asOf: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("ingest")
	}
	return s
}

// Records reads and coerces all rows. Rows with a missing student id or
// an unparseable required numeric are skipped, counted, and logged.
func (s *CSVSource) Records(ctx context.Context) ([]model.StudentRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{ColStudentID, ColCurrentGPA, ColAttendancePct, ColLMSLastActiveDays} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var out []model.StudentRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.skip(ctx, line, err)
			continue
		}
		rec, err := coerceRow(cols, row, s.asOf)
		if err != nil {
			s.skip(ctx, line, err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *CSVSource) skip(ctx context.Context, line int, err error) {
	metrics.RecordStudentSkipped()
	s.logger.Warn(ctx, "skipping malformed student row",
		logger.Int("line", line),
		logger.Error(err),
	)
}

// coerceRow applies the tolerant optional-field model: blank or
// placeholder numerics become the rule's "not triggered" defaults, a
// blank previous GPA stays nil, and only the required fields can reject
// the row.
func coerceRow(cols map[string]int, row []string, asOf time.Time) (model.StudentRecord, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	id := field(ColStudentID)
	if id == "" {
		return model.StudentRecord{}, fmt.Errorf("%w: empty student_id", ErrBadRecord)
	}

	currentGPA, err := requireFloat(field(ColCurrentGPA), ColCurrentGPA)
	if err != nil {
		return model.StudentRecord{}, err
	}
	attendance, err := requireFloat(field(ColAttendancePct), ColAttendancePct)
	if err != nil {
		return model.StudentRecord{}, err
	}
	lmsDays, err := requireInt(field(ColLMSLastActiveDays), ColLMSLastActiveDays)
	if err != nil {
		return model.StudentRecord{}, err
	}

	return model.StudentRecord{
		Student: model.Student{
			StudentID: id,
			FullName:  field(ColFullName),
			Major:     field(ColMajor),
			YearLevel: optionalInt(field(ColYearLevel)),
		},
		Signals: model.Signals{
			CurrentGPA:             currentGPA,
			PreviousGPA:            optionalFloat(field(ColPreviousGPA)),
			AttendancePct:          attendance,
			LMSLastActiveDays:      lmsDays,
			FailedModulesCount:     intOrZero(field(ColFailedModules)),
			MissedAssessmentsCount: intOrZero(field(ColMissedAssessments)),
			CourseLoadCredits:      intOrZero(field(ColCourseLoadCredits)),
			AsOf:                   asOf,
		},
	}, nil
}

// missing reports whether a raw cell represents an absent value.
func missing(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "na", "n/a", "none", "null", "nan", "-":
		return true
	}
	return false
}

func requireFloat(raw, name string) (float64, error) {
	if missing(raw) {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRecord, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", ErrBadRecord, name, raw)
	}
	return v, nil
}

func requireInt(raw, name string) (int, error) {
	if missing(raw) {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRecord, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", ErrBadRecord, name, raw)
	}
	return v, nil
}

func optionalFloat(raw string) *float64 {
	if missing(raw) {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func optionalInt(raw string) *int {
	if missing(raw) {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func intOrZero(raw string) int {
	if missing(raw) {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
