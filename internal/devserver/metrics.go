package devserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/hypewriter/internal/devserver"

// catalogMetrics are the Prometheus series served on /metrics.
type catalogMetrics struct {
	registry *prometheus.Registry

	// Mutations counts catalog writes.
	// Labels: operation (create, activate, delete, import), result (success, error)
	Mutations *prometheus.CounterVec

	// Projects is the current catalog size.
	Projects prometheus.Gauge
}

func newCatalogMetrics() *catalogMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &catalogMetrics{
		registry: reg,
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hypewriter",
				Subsystem: "devserver",
				Name:      "catalog_mutations_total",
				Help:      "Total number of catalog mutations by operation and result",
			},
			[]string{"operation", "result"},
		),
		Projects: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hypewriter",
				Subsystem: "devserver",
				Name:      "projects",
				Help:      "Number of projects in the catalog",
			},
		),
	}
}

func (m *catalogMetrics) observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(operation, result).Inc()
}

// httpMetrics records OpenTelemetry request metrics.
type httpMetrics struct {
	requestsTotal  metric.Int64Counter
	requestDur     metric.Float64Histogram
	activeRequests metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter, logger *logging.Logger) *httpMetrics {
	ctx := context.Background()
	m := &httpMetrics{}

	var err error
	m.requestsTotal, err = meter.Int64Counter(
		"hypewriter.devserver.requests_total",
		metric.WithDescription("HTTP requests by method, route and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn(ctx, "failed to create requests counter", zap.Error(err))
	}

	m.requestDur, err = meter.Float64Histogram(
		"hypewriter.devserver.request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds by method, route and status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		logger.Warn(ctx, "failed to create duration histogram", zap.Error(err))
	}

	m.activeRequests, err = meter.Int64UpDownCounter(
		"hypewriter.devserver.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn(ctx, "failed to create active requests gauge", zap.Error(err))
	}

	return m
}

// middleware records metrics per request. The route template (c.Path) is
// used as the endpoint label so project ids do not explode cardinality.
func (m *httpMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()

			if m.activeRequests != nil {
				m.activeRequests.Add(ctx, 1)
				defer m.activeRequests.Add(ctx, -1)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("endpoint", c.Path()),
				attribute.Int("status", status),
			)

			if m.requestsTotal != nil {
				m.requestsTotal.Add(ctx, 1, attrs)
			}
			if m.requestDur != nil {
				m.requestDur.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			return err
		}
	}
}
