package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

// newResource creates a resource describing the service.
func newResource(cfg *Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)
}

// newTraceExporter creates the OTLP span exporter for the configured protocol.
func newTraceExporter(ctx context.Context, cfg *Config) (trace.SpanExporter, error) {
	if cfg.Protocol == ProtocolHTTP {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(stripScheme(cfg.Endpoint))}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(grpcCredentials()))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// newTracerProvider creates a TracerProvider exporting through exp.
func newTracerProvider(cfg *Config, res *resource.Resource, exp trace.SpanExporter) *trace.TracerProvider {
	var sampler trace.Sampler
	switch {
	case cfg.Sampling.Rate >= 1.0:
		sampler = trace.AlwaysSample()
	case cfg.Sampling.Rate <= 0:
		sampler = trace.NeverSample()
	default:
		sampler = trace.TraceIDRatioBased(cfg.Sampling.Rate)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(sampler)),
	)
}

// cumulative keeps Prometheus-compatible backends happy regardless of the
// OTEL_EXPORTER_OTLP_METRICS_TEMPORALITY_PREFERENCE environment variable.
func cumulative(metric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

// newMetricExporter creates the OTLP metric exporter for the configured protocol.
func newMetricExporter(ctx context.Context, cfg *Config) (metric.Exporter, error) {
	if cfg.Protocol == ProtocolHTTP {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(stripScheme(cfg.Endpoint)),
			otlpmetrichttp.WithTemporalitySelector(cumulative),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithTemporalitySelector(cumulative),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	} else {
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(grpcCredentials()))
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

// newMeterProvider creates a MeterProvider that periodically pushes to exp.
func newMeterProvider(cfg *Config, res *resource.Resource, exp metric.Exporter) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(
			metric.NewPeriodicReader(exp, metric.WithInterval(cfg.Metrics.ExportInterval.Duration())),
		),
	)
}

// grpcCredentials returns TLS transport credentials for remote collectors.
func grpcCredentials() credentials.TransportCredentials {
	return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
}

// stripScheme removes http:// or https:// from an endpoint URL.
// The OTEL HTTP exporters expect just host:port.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}

// Option overrides provider construction, mainly for tests.
type Option func(*options)

type options struct {
	traceExporter  trace.SpanExporter
	metricExporter metric.Exporter
}

// WithTraceExporter replaces the OTLP span exporter.
func WithTraceExporter(exp trace.SpanExporter) Option {
	return func(o *options) { o.traceExporter = exp }
}

// WithMetricExporter replaces the OTLP metric exporter.
func WithMetricExporter(exp metric.Exporter) Option {
	return func(o *options) { o.metricExporter = exp }
}

func (o *options) resolve(ctx context.Context, cfg *Config) error {
	if o.traceExporter == nil {
		exp, err := newTraceExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("creating trace exporter: %w", err)
		}
		o.traceExporter = exp
	}
	if cfg.Metrics.Enabled && o.metricExporter == nil {
		exp, err := newMetricExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("creating metric exporter: %w", err)
		}
		o.metricExporter = exp
	}
	return nil
}
