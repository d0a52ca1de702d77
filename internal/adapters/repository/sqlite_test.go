package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tovu/retain/internal/adapters/repository"
	"github.com/tovu/retain/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an open audit store", t, func() {
		ctx := context.Background()
		store := openStore(t)
		asOf := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		Convey("When upserting a student twice with partial fields", func() {
			year := 3
			So(store.UpsertStudent(ctx, model.Student{
				StudentID: "S001", FullName: "Amina Diallo", Major: "Physics", YearLevel: &year,
			}), ShouldBeNil)
			// Second upsert omits the name and year; they must survive.
			So(store.UpsertStudent(ctx, model.Student{
				StudentID: "S001", Major: "Applied Physics",
			}), ShouldBeNil)
			So(store.AppendRiskSnapshot(ctx, model.RiskResult{
				StudentID: "S001", Score: 40, Tier: model.TierMedium,
			}, asOf), ShouldBeNil)

			Convey("Then absent fields keep their previous values", func() {
				rows, err := store.ListLatestRisks(ctx, 10)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].FullName, ShouldEqual, "Amina Diallo")
			})
		})

		Convey("When appending snapshots for several students", func() {
			for _, r := range []model.RiskResult{
				{StudentID: "S001", Score: 20, Tier: model.TierLow},
				{StudentID: "S002", Score: 80, Tier: model.TierHigh},
				{StudentID: "S003", Score: 45, Tier: model.TierMedium},
			} {
				So(store.UpsertStudent(ctx, model.Student{StudentID: r.StudentID}), ShouldBeNil)
				So(store.AppendRiskSnapshot(ctx, r, asOf), ShouldBeNil)
			}
			// A later snapshot supersedes the first for S001.
			So(store.AppendRiskSnapshot(ctx, model.RiskResult{
				StudentID: "S001", Score: 65, Tier: model.TierHigh,
			}, asOf.Add(time.Hour)), ShouldBeNil)

			Convey("Then the latest listing is per-student and score-descending", func() {
				rows, err := store.ListLatestRisks(ctx, 10)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].StudentID, ShouldEqual, "S002")
				So(rows[1].StudentID, ShouldEqual, "S001")
				So(rows[1].Score, ShouldEqual, 65)
				So(rows[2].StudentID, ShouldEqual, "S003")
			})
		})

		Convey("When building a student timeline", func() {
			So(store.UpsertStudent(ctx, model.Student{StudentID: "S010"}), ShouldBeNil)
			risk := model.RiskResult{
				StudentID: "S010", Score: 75, Tier: model.TierHigh,
				Reasons: []model.Reason{{
					Rule: "attendance_lt_60", Points: 30,
					Evidence:    map[string]any{"attendance_pct": 42.0},
					Explanation: "Attendance below 60%.",
				}},
			}
			So(store.AppendRiskSnapshot(ctx, risk, asOf), ShouldBeNil)
			So(store.AppendRecommendation(ctx, asOf, risk, model.Recommendation{
				Priority: model.PriorityHigh,
				Actions: []model.Action{
					{Type: "Check-in", Owner: "advisor", Rationale: "High risk."},
				},
				Explanation: "Signals show disengagement.",
				Source:      model.SourceFallback,
			}, ""), ShouldBeNil)
			So(store.AppendIntervention(ctx, model.Intervention{
				ID: uuid.NewString(), StudentID: "S010", AsOf: asOf.Add(2 * time.Hour),
				Type: "advisor_meeting", Notes: "met after class", Status: "completed", Outcome: "positive",
			}), ShouldBeNil)

			Convey("Then all three series come back time-ordered with decoded JSON", func() {
				tl, err := store.Timeline(ctx, "S010")
				So(err, ShouldBeNil)
				So(len(tl.Risks), ShouldEqual, 1)
				So(tl.Risks[0].Reasons[0].Rule, ShouldEqual, "attendance_lt_60")
				So(len(tl.Recommendations), ShouldEqual, 1)
				So(tl.Recommendations[0].Source, ShouldEqual, model.SourceFallback)
				So(tl.Recommendations[0].Actions[0].Owner, ShouldEqual, "advisor")
				So(len(tl.Interventions), ShouldEqual, 1)
				So(tl.Interventions[0].Status, ShouldEqual, "completed")
			})
		})

		Convey("When asking for an unknown student's timeline", func() {
			_, err := store.Timeline(ctx, "missing")

			Convey("Then a not-found error is returned", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When storing and reading back signals", func() {
			prev := 3.4
			So(store.UpsertStudent(ctx, model.Student{StudentID: "S020", FullName: "Jo Smit"}), ShouldBeNil)
			So(store.AppendSignals(ctx, "S020", model.Signals{
				CurrentGPA: 2.7, PreviousGPA: &prev, AttendancePct: 58,
				LMSLastActiveDays: 16, FailedModulesCount: 1, AsOf: asOf,
			}, "csv_import"), ShouldBeNil)
			// A second append for the same student supersedes the first.
			So(store.AppendSignals(ctx, "S020", model.Signals{
				CurrentGPA: 3.5, AttendancePct: 95, AsOf: asOf.Add(time.Hour),
			}, "csv_import"), ShouldBeNil)

			Convey("Then the latest observation per student is listed", func() {
				recs, err := store.ListLatestSignals(ctx, 10)
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 1)
				So(recs[0].Student.FullName, ShouldEqual, "Jo Smit")
				So(recs[0].Signals.CurrentGPA, ShouldEqual, 3.5)
				So(recs[0].Signals.PreviousGPA, ShouldBeNil)
			})
		})
	})
}
