package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

func TestContextFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithProjectID(ctx, "abc")
	ctx = WithRequestID(ctx, "req-1")

	tl := NewTestLogger()
	tl.Info(ctx, "correlated")

	tl.AssertTraceCorrelation(t, "correlated")
	tl.AssertField(t, "correlated", "trace_id", "4bf92f3577b34da6a3ce929d0e0e4736")
	tl.AssertField(t, "correlated", "span_id", "00f067aa0ba902b7")
	tl.AssertField(t, "correlated", "trace_sampled", true)
	tl.AssertField(t, "correlated", "project.id", "abc")
	tl.AssertField(t, "correlated", "request.id", "req-1")
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()), "falls back to a no-op logger")

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Warn(ctx, "from context")

	tl.AssertLogged(t, zapcore.WarnLevel, "from context")
}
