package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tovu/retain/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given config loading", t, func() {
		os.Unsetenv("RETAIN_CONFIG")

		Convey("When nothing overrides the defaults", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.AdvisoryModel, ShouldEqual, "gemini-1.5-flash")
				So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
				So(cfg.AdvisoryAPIKey, ShouldBeBlank)
			})
		})

		Convey("When environment variables are set", func() {
			t.Setenv("RETAIN_LOG_LEVEL", "debug")
			t.Setenv("RETAIN_WORKER_COUNT", "4")
			t.Setenv("RETAIN_ADVISORY_MODEL", "gemini-2.0-flash")
			cfg, err := config.Load(context.Background())

			Convey("Then env values win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.WorkerCount, ShouldEqual, 4)
				So(cfg.AdvisoryModel, ShouldEqual, "gemini-2.0-flash")
			})
		})

		Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "retain.yaml")
			So(os.WriteFile(path, []byte("output_path: /tmp/out.json\nmax_risk_list_limit: 50\n"), 0o600), ShouldBeNil)
			t.Setenv("RETAIN_CONFIG", path)
			cfg, err := config.Load(context.Background())

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.OutputPath, ShouldEqual, "/tmp/out.json")
				So(cfg.MaxRiskListLimit, ShouldEqual, 50)
			})
		})

		Convey("When validation fails", func() {
			t.Setenv("RETAIN_WORKER_COUNT", "0")
			_, err := config.Load(context.Background())

			Convey("Then an invalid-config error is returned", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
