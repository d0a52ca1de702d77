// Package config defines process configuration and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StudentsCSV is the default batch ingestion source.
	StudentsCSV string `koanf:"students_csv"`

	// OutputPath receives the JSON array of processed outcomes.
	OutputPath string `koanf:"output_path"`

	// DatabasePath locates the SQLite audit store.
	DatabasePath string `koanf:"database_path"`

	// WorkerCount bounds pipeline concurrency.
	WorkerCount int `koanf:"worker_count"`

	// Addr configures the read API listen address for `retain serve`.
	Addr string `koanf:"addr"`

	// MaxRiskListLimit caps GET /risks?limit.
	MaxRiskListLimit int `koanf:"max_risk_list_limit"`

	// Advisory service settings. An empty APIKey disables the advisory
	// path entirely; every decision then uses the fallback policy.
	AdvisoryAPIKey    string `koanf:"advisory_api_key"`
	AdvisoryModel     string `koanf:"advisory_model"`
	AdvisoryTimeoutMS int    `koanf:"advisory_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		StudentsCSV:       "data/students.csv",
		OutputPath:        "outputs/run.json",
		DatabasePath:      "retain.db",
		WorkerCount:       runtime.NumCPU() * 2,
		Addr:              ":9080",
		MaxRiskListLimit:  200,
		AdvisoryModel:     "gemini-1.5-flash",
		AdvisoryTimeoutMS: 30_000,
	}
}
