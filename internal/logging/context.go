// internal/logging/context.go
package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 5)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if projectID := ProjectIDFromContext(ctx); projectID != "" {
		fields = append(fields, zap.String("project.id", projectID))
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	return fields
}

type projectCtxKey struct{}
type requestCtxKey struct{}
type loggerCtxKey struct{}

// WithProjectID records the project an operation acts on.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectCtxKey{}, projectID)
}

// ProjectIDFromContext returns the project id stored by WithProjectID.
func ProjectIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(projectCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID records the request id of an inbound HTTP request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or a no-op logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return NewNop()
}
