// Package telemetry provides OpenTelemetry instrumentation for hypewriter.
//
// Traces and metrics are exported over OTLP (gRPC or HTTP/protobuf) to a
// collector. Telemetry is disabled by default; a disabled instance hands out
// the global no-op providers so callers never need to nil-check.
//
//	cfg := telemetry.NewDefaultConfig()
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	client := api.NewClient(baseURL, api.WithTelemetry(tel))
//
// Tests use TestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	...
//	tt.AssertSpanExists(t, "api.ListProjects")
package telemetry
