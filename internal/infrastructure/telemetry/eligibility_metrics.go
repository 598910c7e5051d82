package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Evaluation outcomes
const (
	OutcomePassed   = "passed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// EligibilityMetrics records evaluation and rule snapshot activity.
type EligibilityMetrics struct {
	logger *zap.Logger

	evaluationsTotal   *Counter
	evaluationDuration *Histogram
	ruleReloadsTotal   *Counter
	snapshotVersion    *Gauge
}

// EligibilityMetricsConfig configures NewEligibilityMetrics.
type EligibilityMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEligibilityMetrics registers the eligibility instruments on the meter.
func NewEligibilityMetrics(cfg EligibilityMetricsConfig) (*EligibilityMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	em := &EligibilityMetrics{logger: logger}
	var err error

	em.evaluationsTotal, err = NewCounter(cfg.Meter,
		"dropship_evaluations_total",
		"Total number of eligibility evaluations",
		"{evaluations}",
	)
	if err != nil {
		return nil, err
	}

	em.evaluationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "dropship_evaluation_duration_seconds",
		Description: "Time spent evaluating a single offer",
		Unit:        "s",
		Buckets:     SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	em.ruleReloadsTotal, err = NewCounter(cfg.Meter,
		"dropship_rule_reloads_total",
		"Total number of rule snapshot reloads",
		"{reloads}",
	)
	if err != nil {
		return nil, err
	}

	em.snapshotVersion, err = NewGauge(cfg.Meter,
		"dropship_snapshot_version",
		"Version of the active reference data snapshot",
		"{version}",
	)
	if err != nil {
		return nil, err
	}

	return em, nil
}

// RecordEvaluation counts one evaluation and its latency.
func (em *EligibilityMetrics) RecordEvaluation(ctx context.Context, marketplace string, passed bool, d time.Duration) {
	outcome := OutcomeRejected
	if passed {
		outcome = OutcomePassed
	}
	em.evaluationsTotal.Inc(ctx, AttrMarketplace.String(marketplace), AttrOutcome.String(outcome))
	em.evaluationDuration.RecordDuration(ctx, d, AttrMarketplace.String(marketplace))
}

// RecordEvaluationError counts an evaluation that returned an error.
func (em *EligibilityMetrics) RecordEvaluationError(ctx context.Context, marketplace string) {
	em.evaluationsTotal.Inc(ctx, AttrMarketplace.String(marketplace), AttrOutcome.String(OutcomeError))
}

// RecordRuleReload counts a snapshot swap and publishes the new version.
func (em *EligibilityMetrics) RecordRuleReload(ctx context.Context, kind string, version uint64) {
	em.ruleReloadsTotal.Inc(ctx, AttrRuleKind.String(kind))
	em.snapshotVersion.Record(ctx, int64(version))
	em.logger.Debug("Rule snapshot reloaded",
		zap.String("rule_kind", kind),
		zap.Uint64("snapshot_version", version),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewEligibilityMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
