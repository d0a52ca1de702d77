// Package decision orchestrates recommendation production: consult the
// advisory service when configured, validate its output, and fall back
// to the deterministic policy on any failure. A decision never fails;
// availability wins over advisory freshness.
package decision

import (
	"context"
	"time"

	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/internal/domain/recommend"
	"github.com/tovu/retain/pkg/logger"
	"github.com/tovu/retain/pkg/metrics"
)

// defaultAdvisoryTimeout bounds a single advisory call, not the pipeline.
const defaultAdvisoryTimeout = 30 * time.Second

// Advisor abstracts the external advisory service: produce a candidate
// recommendation for a context, or fail.
type Advisor interface {
	// Configured reports whether the client has a credential and can be
	// called at all.
	Configured() bool

	// Generate returns an untrusted candidate recommendation. Transport
	// failures, non-success statuses and malformed response bodies are
	// all returned as errors; Generate never retries.
	Generate(ctx context.Context, rc model.RecommendationContext) (recommend.Candidate, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTimeout bounds each advisory call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// Engine turns a scored student context into a recommendation. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	advisor Advisor
	timeout time.Duration
	logger  logger.Logger
}

// New creates a decision engine. A nil advisor means the advisory path
// is disabled and every decision uses the fallback policy.
func New(advisor Advisor, opts ...Option) *Engine {
	e := &Engine{
		advisor: advisor,
		timeout: defaultAdvisoryTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("decision")
	}
	return e
}

// Decide returns a validator-passing recommendation for the context.
// The advisory branch is attempted at most once; any error routes to
// the fallback policy and is never surfaced to the caller.
func (e *Engine) Decide(ctx context.Context, rc model.RecommendationContext) model.Recommendation {
	if e.advisor == nil || !e.advisor.Configured() {
		metrics.RecordFallback("not_configured")
		return recommend.Fallback(rc.Risk.Tier)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	candidate, err := e.advisor.Generate(callCtx, rc)
	metrics.RecordAdvisoryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordAdvisoryError()
		metrics.RecordFallback("service_error")
		e.logger.Warn(ctx, "advisory service failed; using fallback",
			logger.String("studentID", rc.Student.StudentID),
			logger.Error(err),
		)
		return recommend.Fallback(rc.Risk.Tier)
	}

	rec, err := recommend.Validate(candidate)
	if err != nil {
		metrics.RecordFallback("validation_failed")
		e.logger.Warn(ctx, "advisory output failed validation; using fallback",
			logger.String("studentID", rc.Student.StudentID),
			logger.Error(err),
		)
		return recommend.Fallback(rc.Risk.Tier)
	}

	metrics.RecordAdvisorySuccess()
	rec.Source = model.SourceAdvisory
	return rec
}
