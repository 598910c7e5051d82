package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewEligibilityMetricsNilMeter(t *testing.T) {
	em, err := telemetry.NewEligibilityMetrics(telemetry.EligibilityMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, em)
	assert.Equal(t, "NewEligibilityMetrics: meter cannot be nil", err.Error())
}

func TestEligibilityMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	em, err := telemetry.NewEligibilityMetrics(telemetry.EligibilityMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	em.RecordEvaluation(ctx, "ebay", true, 2*time.Millisecond)
	em.RecordEvaluation(ctx, "ebay", true, 3*time.Millisecond)
	em.RecordEvaluation(ctx, "etsy", false, time.Millisecond)
	em.RecordEvaluationError(ctx, "base")
	em.RecordRuleReload(ctx, "brand", 4)

	metrics := collect(t, reader)

	evals, ok := metrics["dropship_evaluations_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range evals.DataPoints {
		m, _ := dp.Attributes.Value(attribute.Key("marketplace"))
		o, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[m.AsString()+"/"+o.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		"ebay/passed":   2,
		"etsy/rejected": 1,
		"base/error":    1,
	}, counts)

	hist, ok := metrics["dropship_evaluation_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(3), total)

	version, ok := metrics["dropship_snapshot_version"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, version.DataPoints, 1)
	assert.Equal(t, int64(4), version.DataPoints[0].Value)
}

func TestNewZapOTELCoreDisabled(t *testing.T) {
	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{ServiceName: "test", Level: zapcore.InfoLevel})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	logger := telemetry.NewBridgedLogger(zapcore.NewNopCore(), core)
	assert.NotNil(t, logger)
}
