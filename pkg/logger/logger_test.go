package logger_test

import (
	"context"
	"testing"

	"github.com/tovu/retain/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When retrieving and naming loggers", func() {
			log := logger.Get()
			named := log.Named("pipeline")

			Convey("Then both are usable without panicking", func() {
				So(log, ShouldNotBeNil)
				So(named, ShouldNotBeNil)
				So(func() {
					named.Info(context.Background(), "processed",
						logger.String("studentID", "stu-1"),
						logger.Int("score", 40),
						logger.Bool("fallback", true),
					)
				}, ShouldNotPanic)
			})
		})

		Convey("When setting levels from strings", func() {
			Convey("Then known levels parse and unknown ones fail", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("WARN"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})
	})
}
