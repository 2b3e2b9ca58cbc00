package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/hypewriter/internal/api"

// clientMetrics records per-operation request counts and latency.
type clientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newClientMetrics(meter metric.Meter, logger *logging.Logger) *clientMetrics {
	m := &clientMetrics{}
	ctx := context.Background()

	var err error
	m.requests, err = meter.Int64Counter(
		"hypewriter.api.requests_total",
		metric.WithDescription("Backend API requests by operation and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn(ctx, "failed to create requests counter", zap.Error(err))
	}

	m.duration, err = meter.Float64Histogram(
		"hypewriter.api.request_duration_seconds",
		metric.WithDescription("Backend API request latency by operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		logger.Warn(ctx, "failed to create duration histogram", zap.Error(err))
	}

	return m
}

func (m *clientMetrics) record(ctx context.Context, op string, status int, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
		attribute.Int("status", status),
	)

	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
