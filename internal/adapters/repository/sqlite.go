package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tovu/retain/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
    student_id TEXT PRIMARY KEY,
    full_name  TEXT,
    major      TEXT,
    year_level INTEGER
);

CREATE TABLE IF NOT EXISTS student_signals (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id               TEXT NOT NULL,
    as_of                    TEXT NOT NULL,
    current_gpa              REAL NOT NULL,
    previous_gpa             REAL,
    attendance_pct           REAL NOT NULL,
    lms_last_active_days     INTEGER NOT NULL,
    failed_modules_count     INTEGER NOT NULL DEFAULT 0,
    missed_assessments_count INTEGER NOT NULL DEFAULT 0,
    course_load_credits      INTEGER NOT NULL DEFAULT 0,
    source                   TEXT NOT NULL DEFAULT 'manual_entry'
);

CREATE TABLE IF NOT EXISTS risk_snapshots (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id   TEXT NOT NULL,
    as_of        TEXT NOT NULL,
    score        INTEGER NOT NULL,
    level        TEXT NOT NULL,
    reasons_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id               TEXT NOT NULL,
    as_of                    TEXT NOT NULL,
    risk_score               INTEGER NOT NULL,
    risk_level               TEXT NOT NULL,
    recommended_actions_json TEXT NOT NULL,
    priority                 TEXT NOT NULL,
    explanation              TEXT NOT NULL,
    source                   TEXT NOT NULL,
    model_used               TEXT
);

CREATE TABLE IF NOT EXISTS interventions (
    id                TEXT PRIMARY KEY,
    student_id        TEXT NOT NULL,
    as_of             TEXT NOT NULL,
    intervention_type TEXT NOT NULL,
    notes             TEXT,
    status            TEXT NOT NULL DEFAULT 'proposed',
    outcome           TEXT
);

CREATE INDEX IF NOT EXISTS idx_signals_student   ON student_signals(student_id, as_of);
CREATE INDEX IF NOT EXISTS idx_snapshots_student ON risk_snapshots(student_id, as_of);
CREATE INDEX IF NOT EXISTS idx_recs_student      ON recommendations(student_id, as_of);
CREATE INDEX IF NOT EXISTS idx_interv_student    ON interventions(student_id, as_of);
`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the audit database at path.
// A single connection serializes the write path; each append is its own
// atomic unit.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isoTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// UpsertStudent inserts or merges a profile. Absent fields (blank
// strings, nil year level) keep the previously stored value.
func (s *SQLiteStore) UpsertStudent(ctx context.Context, st model.Student) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students(student_id, full_name, major, year_level)
		VALUES(?, NULLIF(?, ''), NULLIF(?, ''), ?)
		ON CONFLICT(student_id) DO UPDATE SET
		  full_name  = COALESCE(excluded.full_name, students.full_name),
		  major      = COALESCE(excluded.major, students.major),
		  year_level = COALESCE(excluded.year_level, students.year_level)`,
		st.StudentID, st.FullName, st.Major, st.YearLevel,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert student: %w", ErrStore, err)
	}
	return nil
}

// AppendSignals stores one signals observation.
func (s *SQLiteStore) AppendSignals(ctx context.Context, studentID string, sig model.Signals, source string) error {
	var prev any
	if sig.PreviousGPA != nil {
		prev = *sig.PreviousGPA
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO student_signals(
		    student_id, as_of, current_gpa, previous_gpa, attendance_pct,
		    lms_last_active_days, failed_modules_count,
		    missed_assessments_count, course_load_credits, source
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		studentID, isoTime(sig.AsOf), sig.CurrentGPA, prev, sig.AttendancePct,
		sig.LMSLastActiveDays, sig.FailedModulesCount,
		sig.MissedAssessmentsCount, sig.CourseLoadCredits, source,
	)
	if err != nil {
		return fmt.Errorf("%w: append signals: %w", ErrStore, err)
	}
	return nil
}

// AppendRiskSnapshot stores one scoring outcome.
func (s *SQLiteStore) AppendRiskSnapshot(ctx context.Context, res model.RiskResult, asOf time.Time) error {
	reasons, err := json.Marshal(res.Reasons)
	if err != nil {
		return fmt.Errorf("%w: encode reasons: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_snapshots(student_id, as_of, score, level, reasons_json)
		VALUES(?, ?, ?, ?, ?)`,
		res.StudentID, isoTime(asOf), res.Score, string(res.Tier), string(reasons),
	)
	if err != nil {
		return fmt.Errorf("%w: append snapshot: %w", ErrStore, err)
	}
	return nil
}

// AppendRecommendation stores one recommendation with provenance.
func (s *SQLiteStore) AppendRecommendation(ctx context.Context, asOf time.Time, risk model.RiskResult, rec model.Recommendation, modelUsed string) error {
	actions, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("%w: encode actions: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recommendations(
		    student_id, as_of, risk_score, risk_level,
		    recommended_actions_json, priority, explanation, source, model_used
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))`,
		risk.StudentID, isoTime(asOf), risk.Score, string(risk.Tier),
		string(actions), string(rec.Priority), rec.Explanation, string(rec.Source), modelUsed,
	)
	if err != nil {
		return fmt.Errorf("%w: append recommendation: %w", ErrStore, err)
	}
	return nil
}

// AppendIntervention stores one human-logged intervention.
func (s *SQLiteStore) AppendIntervention(ctx context.Context, iv model.Intervention) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interventions(id, student_id, as_of, intervention_type, notes, status, outcome)
		VALUES(?, ?, ?, ?, NULLIF(?, ''), ?, NULLIF(?, ''))`,
		iv.ID, iv.StudentID, isoTime(iv.AsOf), iv.Type, iv.Notes, iv.Status, iv.Outcome,
	)
	if err != nil {
		return fmt.Errorf("%w: append intervention: %w", ErrStore, err)
	}
	return nil
}

// ListLatestRisks returns the newest snapshot per student, score desc.
func (s *SQLiteStore) ListLatestRisks(ctx context.Context, limit int) ([]RiskRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rs.student_id, COALESCE(st.full_name, ''), rs.as_of, rs.score, rs.level
		FROM risk_snapshots rs
		LEFT JOIN students st ON st.student_id = rs.student_id
		WHERE rs.id IN (SELECT MAX(id) FROM risk_snapshots GROUP BY student_id)
		ORDER BY rs.score DESC, rs.as_of DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list latest risks: %w", ErrStore, err)
	}
	defer rows.Close()

	var out []RiskRow
	for rows.Next() {
		var r RiskRow
		var asOf, tier string
		if err := rows.Scan(&r.StudentID, &r.FullName, &asOf, &r.Score, &tier); err != nil {
			return nil, fmt.Errorf("%w: scan risk row: %w", ErrStore, err)
		}
		r.AsOf, _ = time.Parse(time.RFC3339, asOf)
		r.Tier = model.Tier(tier)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list latest risks: %w", ErrStore, err)
	}
	return out, nil
}

// ListLatestSignals returns the newest signals observation per student.
func (s *SQLiteStore) ListLatestSignals(ctx context.Context, limit int) ([]model.StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ss.student_id, COALESCE(st.full_name, ''), COALESCE(st.major, ''), st.year_level,
		       ss.as_of, ss.current_gpa, ss.previous_gpa, ss.attendance_pct,
		       ss.lms_last_active_days, ss.failed_modules_count,
		       ss.missed_assessments_count, ss.course_load_credits
		FROM student_signals ss
		LEFT JOIN students st ON st.student_id = ss.student_id
		WHERE ss.id IN (SELECT MAX(id) FROM student_signals GROUP BY student_id)
		ORDER BY ss.student_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list latest signals: %w", ErrStore, err)
	}
	defer rows.Close()

	var out []model.StudentRecord
	for rows.Next() {
		var rec model.StudentRecord
		var asOf string
		var year sql.NullInt64
		var prev sql.NullFloat64
		err := rows.Scan(
			&rec.Student.StudentID, &rec.Student.FullName, &rec.Student.Major, &year,
			&asOf, &rec.Signals.CurrentGPA, &prev, &rec.Signals.AttendancePct,
			&rec.Signals.LMSLastActiveDays, &rec.Signals.FailedModulesCount,
			&rec.Signals.MissedAssessmentsCount, &rec.Signals.CourseLoadCredits,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan signals row: %w", ErrStore, err)
		}
		if year.Valid {
			y := int(year.Int64)
			rec.Student.YearLevel = &y
		}
		if prev.Valid {
			p := prev.Float64
			rec.Signals.PreviousGPA = &p
		}
		rec.Signals.AsOf, _ = time.Parse(time.RFC3339, asOf)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list latest signals: %w", ErrStore, err)
	}
	return out, nil
}

// Timeline returns the full history for one student, oldest first.
func (s *SQLiteStore) Timeline(ctx context.Context, studentID string) (Timeline, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM students WHERE student_id = ?`, studentID).Scan(&exists)
	if err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline: %w", ErrStore, err)
	}
	if exists == 0 {
		return Timeline{}, fmt.Errorf("%w: %s", ErrNotFound, studentID)
	}

	tl := Timeline{}

	risks, err := s.db.QueryContext(ctx, `
		SELECT as_of, score, level, reasons_json
		FROM risk_snapshots WHERE student_id = ? ORDER BY as_of ASC, id ASC`, studentID)
	if err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline risks: %w", ErrStore, err)
	}
	defer risks.Close()
	for risks.Next() {
		var e RiskEntry
		var asOf, tier, reasons string
		if err := risks.Scan(&asOf, &e.Score, &tier, &reasons); err != nil {
			return Timeline{}, fmt.Errorf("%w: scan timeline risk: %w", ErrStore, err)
		}
		e.AsOf, _ = time.Parse(time.RFC3339, asOf)
		e.Tier = model.Tier(tier)
		_ = json.Unmarshal([]byte(reasons), &e.Reasons)
		tl.Risks = append(tl.Risks, e)
	}
	if err := risks.Err(); err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline risks: %w", ErrStore, err)
	}

	recs, err := s.db.QueryContext(ctx, `
		SELECT as_of, risk_score, risk_level, recommended_actions_json,
		       priority, explanation, source, COALESCE(model_used, '')
		FROM recommendations WHERE student_id = ? ORDER BY as_of ASC, id ASC`, studentID)
	if err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline recommendations: %w", ErrStore, err)
	}
	defer recs.Close()
	for recs.Next() {
		var e RecommendationEntry
		var asOf, tier, actions, priority, source string
		if err := recs.Scan(&asOf, &e.Score, &tier, &actions, &priority, &e.Explanation, &source, &e.ModelUsed); err != nil {
			return Timeline{}, fmt.Errorf("%w: scan timeline recommendation: %w", ErrStore, err)
		}
		e.AsOf, _ = time.Parse(time.RFC3339, asOf)
		e.Tier = model.Tier(tier)
		e.Priority = model.Priority(priority)
		e.Source = model.Source(source)
		_ = json.Unmarshal([]byte(actions), &e.Actions)
		tl.Recommendations = append(tl.Recommendations, e)
	}
	if err := recs.Err(); err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline recommendations: %w", ErrStore, err)
	}

	ivs, err := s.db.QueryContext(ctx, `
		SELECT id, as_of, intervention_type, COALESCE(notes, ''), status, COALESCE(outcome, '')
		FROM interventions WHERE student_id = ? ORDER BY as_of ASC`, studentID)
	if err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline interventions: %w", ErrStore, err)
	}
	defer ivs.Close()
	for ivs.Next() {
		var e model.Intervention
		var asOf string
		if err := ivs.Scan(&e.ID, &asOf, &e.Type, &e.Notes, &e.Status, &e.Outcome); err != nil {
			return Timeline{}, fmt.Errorf("%w: scan timeline intervention: %w", ErrStore, err)
		}
		e.StudentID = studentID
		e.AsOf, _ = time.Parse(time.RFC3339, asOf)
		tl.Interventions = append(tl.Interventions, e)
	}
	if err := ivs.Err(); err != nil {
		return Timeline{}, fmt.Errorf("%w: timeline interventions: %w", ErrStore, err)
	}

	return tl, nil
}
