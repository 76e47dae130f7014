// Package observability sets up OpenTelemetry tracing for kafkaboot.
//
// Tracing is off unless an OTLP endpoint is configured. Without one the
// global provider stays the OpenTelemetry no-op and StartSpan costs nothing,
// so discovery, registry and bootstrap code can start spans unconditionally.
//
//	shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
//		ServiceName: "kafkaboot",
//		Endpoint:    "otel-collector:4318",
//		Insecure:    true,
//	}, log)
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPrepare)
//	defer span.End()
package observability
