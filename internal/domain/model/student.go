// Package model contains domain models passed between layers.
package model

import "time"

// Student identifies a student plus the display attributes advisors see.
// Everything except StudentID is optional at ingestion time.
type Student struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name,omitempty"`
	Major     string `json:"major,omitempty"`
	YearLevel *int   `json:"year_level,omitempty"`
}

// StudentRecord pairs a student's identity with one signals observation,
// as supplied by an ingestion source.
type StudentRecord struct {
	Student Student `json:"student"`
	Signals Signals `json:"signals"`
}

// Signals holds one observation of a student's academic signals.
// PreviousGPA is nil when no prior term GPA is known; the GPA-trend rule
// is skipped in that case rather than failing.
type Signals struct {
	CurrentGPA             float64   `json:"current_gpa"`
	PreviousGPA            *float64  `json:"previous_gpa"`
	AttendancePct          float64   `json:"attendance_pct"`
	LMSLastActiveDays      int       `json:"lms_last_active_days"`
	FailedModulesCount     int       `json:"failed_modules_count"`
	MissedAssessmentsCount int       `json:"missed_assessments_count"`
	CourseLoadCredits      int       `json:"course_load_credits"`
	AsOf                   time.Time `json:"-"`
}
