package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tovu/retain/internal/adapters/ingest"
	"github.com/tovu/retain/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVSource(t *testing.T) {
	_ = logger.Init()

	Convey("Given a CSV ingestion source", t, func() {
		ctx := context.Background()
		asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When reading well-formed rows", func() {
			path := writeCSV(t, "student_id,full_name,major,year_level,current_gpa,previous_gpa,attendance_pct,lms_last_active_days,failed_modules_count,missed_assessments_count,course_load_credits\n"+
				"S001,Amina Diallo,Physics,2,2.8,3.5,55,20,2,1,18\n"+
				"S002,Jo Smit,Biology,,3.0,,90,2,,,\n")
			src := ingest.NewCSVSource(path, ingest.WithAsOf(asOf))
			records, err := src.Records(ctx)

			Convey("Then all records load in order with coerced fields", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)

				first := records[0]
				So(first.Student.StudentID, ShouldEqual, "S001")
				So(first.Student.FullName, ShouldEqual, "Amina Diallo")
				So(*first.Student.YearLevel, ShouldEqual, 2)
				So(*first.Signals.PreviousGPA, ShouldEqual, 3.5)
				So(first.Signals.FailedModulesCount, ShouldEqual, 2)
				So(first.Signals.AsOf, ShouldEqual, asOf)

				second := records[1]
				So(second.Student.YearLevel, ShouldBeNil)
				So(second.Signals.PreviousGPA, ShouldBeNil)
				So(second.Signals.FailedModulesCount, ShouldEqual, 0)
				So(second.Signals.MissedAssessmentsCount, ShouldEqual, 0)
				So(second.Signals.CourseLoadCredits, ShouldEqual, 0)
			})
		})

		Convey("When rows carry placeholder numerics", func() {
			path := writeCSV(t, "student_id,current_gpa,previous_gpa,attendance_pct,lms_last_active_days,failed_modules_count\n"+
				"S003,3.2,NA,80,3,n/a\n")
			records, err := ingest.NewCSVSource(path).Records(ctx)

			Convey("Then placeholders coerce to the tolerant defaults", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Signals.PreviousGPA, ShouldBeNil)
				So(records[0].Signals.FailedModulesCount, ShouldEqual, 0)
			})
		})

		Convey("When a row is malformed", func() {
			path := writeCSV(t, "student_id,current_gpa,attendance_pct,lms_last_active_days\n"+
				",3.0,90,2\n"+ // missing id
				"S004,not-a-number,90,2\n"+ // bad required numeric
				"S005,3.1,85,4\n")
			records, err := ingest.NewCSVSource(path).Records(ctx)

			Convey("Then only that row is skipped, not the batch", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Student.StudentID, ShouldEqual, "S005")
			})
		})

		Convey("When a required column is missing", func() {
			path := writeCSV(t, "student_id,current_gpa\nS006,3.0\n")
			_, err := ingest.NewCSVSource(path).Records(ctx)

			Convey("Then the whole source is rejected up front", func() {
				So(err, ShouldWrap, ingest.ErrMissingColumn)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := ingest.NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Records(ctx)

			Convey("Then an open-source error is returned", func() {
				So(err, ShouldWrap, ingest.ErrOpenSource)
			})
		})
	})
}
