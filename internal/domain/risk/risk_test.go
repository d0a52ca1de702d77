package risk_test

import (
	"context"
	"testing"

	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func gpa(v float64) *float64 { return &v }

func TestRuleScorer_Score(t *testing.T) {
	Convey("Given a rule scorer", t, func() {
		scorer := risk.NewRuleScorer()
		ctx := context.Background()

		Convey("When every rule fires at its highest variant", func() {
			in := model.Signals{
				CurrentGPA:             2.8,
				PreviousGPA:            gpa(3.5),
				AttendancePct:          55,
				LMSLastActiveDays:      20,
				FailedModulesCount:     2,
				MissedAssessmentsCount: 1,
				CourseLoadCredits:      18,
			}
			res := scorer.Score(ctx, "stu-001", in)

			Convey("Then the raw sum is clamped to 100 and the tier is HIGH", func() {
				// 30 + 25 + 20 + 25 + 10 = 110 before clamping
				So(res.Score, ShouldEqual, 100)
				So(res.Tier, ShouldEqual, model.TierHigh)
				So(res.StudentID, ShouldEqual, "stu-001")
			})

			Convey("And exactly the five triggered rules are listed in evaluation order", func() {
				So(len(res.Reasons), ShouldEqual, 5)
				So(res.Reasons[0].Rule, ShouldEqual, risk.RuleAttendance)
				So(res.Reasons[1].Rule, ShouldEqual, risk.RuleGPADrop)
				So(res.Reasons[2].Rule, ShouldEqual, risk.RuleInactivity)
				So(res.Reasons[3].Rule, ShouldEqual, risk.RuleFailedModulesGe2)
				So(res.Reasons[4].Rule, ShouldEqual, risk.RuleMissedGe1)
			})

			Convey("And the GPA drop evidence is rounded", func() {
				So(res.Reasons[1].Evidence["gpa_drop"], ShouldEqual, 0.7)
			})
		})

		Convey("When no rule fires", func() {
			in := model.Signals{
				CurrentGPA:        3.0,
				AttendancePct:     90,
				LMSLastActiveDays: 2,
				CourseLoadCredits: 12,
			}
			res := scorer.Score(ctx, "stu-002", in)

			Convey("Then the score is zero, the tier is LOW and there are no reasons", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Tier, ShouldEqual, model.TierLow)
				So(res.Reasons, ShouldBeEmpty)
			})
		})

		Convey("When previous GPA is missing", func() {
			in := model.Signals{
				CurrentGPA:    1.0, // would trigger any trend rule if one applied
				AttendancePct: 95,
			}
			res := scorer.Score(ctx, "stu-003", in)

			Convey("Then only the GPA trend rule is disabled, nothing fails", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Reasons, ShouldBeEmpty)
			})
		})

		Convey("When the tiered rules fire", func() {
			Convey("Then only the higher failed-modules variant contributes", func() {
				res := scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, FailedModulesCount: 3})
				So(len(res.Reasons), ShouldEqual, 1)
				So(res.Reasons[0].Rule, ShouldEqual, risk.RuleFailedModulesGe2)
				So(res.Score, ShouldEqual, 25)
			})

			Convey("Then a single failed module contributes the lower variant", func() {
				res := scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, FailedModulesCount: 1})
				So(len(res.Reasons), ShouldEqual, 1)
				So(res.Reasons[0].Rule, ShouldEqual, risk.RuleFailedModulesGe1)
				So(res.Score, ShouldEqual, 15)
			})

			Convey("Then only the higher missed-assessments variant contributes", func() {
				res := scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, MissedAssessmentsCount: 3})
				So(len(res.Reasons), ShouldEqual, 1)
				So(res.Reasons[0].Rule, ShouldEqual, risk.RuleMissedGe3)
				So(res.Score, ShouldEqual, 20)
			})
		})

		Convey("When scoring boundary inputs", func() {
			Convey("Then rule thresholds are strict where specified", func() {
				// attendance exactly 60 does not fire
				So(scorer.Score(ctx, "s", model.Signals{AttendancePct: 60}).Score, ShouldEqual, 0)
				// gpa drop of exactly 0.5 does not fire
				res := scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, CurrentGPA: 3.0, PreviousGPA: gpa(3.5)})
				So(res.Score, ShouldEqual, 0)
				// 14 inactive days does not fire, 15 does
				So(scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, LMSLastActiveDays: 14}).Score, ShouldEqual, 0)
				So(scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, LMSLastActiveDays: 15}).Score, ShouldEqual, 20)
				// 21 credits fires, 20 does not
				So(scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, CourseLoadCredits: 20}).Score, ShouldEqual, 0)
				So(scorer.Score(ctx, "s", model.Signals{AttendancePct: 100, CourseLoadCredits: 21}).Score, ShouldEqual, 10)
			})
		})

		Convey("When the same signals are scored twice", func() {
			in := model.Signals{
				CurrentGPA:             2.1,
				PreviousGPA:            gpa(3.0),
				AttendancePct:          58,
				LMSLastActiveDays:      16,
				FailedModulesCount:     1,
				MissedAssessmentsCount: 2,
				CourseLoadCredits:      22,
			}

			Convey("Then the results are identical", func() {
				first := scorer.Score(ctx, "stu-004", in)
				second := scorer.Score(ctx, "stu-004", in)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When a single signal worsens", func() {
			base := model.Signals{
				CurrentGPA:        3.0,
				PreviousGPA:       gpa(3.2),
				AttendancePct:     75,
				LMSLastActiveDays: 5,
			}
			baseScore := scorer.Score(ctx, "s", base).Score

			Convey("Then the score never decreases", func() {
				worse := base
				worse.AttendancePct = 40
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)

				worse = base
				worse.CurrentGPA = 2.0
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)

				worse = base
				worse.LMSLastActiveDays = 30
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)

				worse = base
				worse.FailedModulesCount = 2
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)

				worse = base
				worse.MissedAssessmentsCount = 4
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)

				worse = base
				worse.CourseLoadCredits = 24
				So(scorer.Score(ctx, "s", worse).Score, ShouldBeGreaterThanOrEqualTo, baseScore)
			})
		})

		Convey("When signals are out of range", func() {
			in := model.Signals{
				CurrentGPA:        -2,
				PreviousGPA:       gpa(9),
				AttendancePct:     -10,
				LMSLastActiveDays: 10_000,
			}

			Convey("Then the scorer tolerates them and still clamps to [0,100]", func() {
				res := scorer.Score(ctx, "s", in)
				So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
			})
		})
	})
}

func TestTierFor(t *testing.T) {
	Convey("Given the tier boundaries", t, func() {
		Convey("Then exactly 30 is LOW and exactly 60 is MEDIUM", func() {
			So(risk.TierFor(0), ShouldEqual, model.TierLow)
			So(risk.TierFor(30), ShouldEqual, model.TierLow)
			So(risk.TierFor(31), ShouldEqual, model.TierMedium)
			So(risk.TierFor(60), ShouldEqual, model.TierMedium)
			So(risk.TierFor(61), ShouldEqual, model.TierHigh)
			So(risk.TierFor(100), ShouldEqual, model.TierHigh)
		})
	})
}
