// Package observability wires OpenTelemetry tracing and metrics for the
// bridge: OTLP/HTTP exporters, span helpers for adapter and host commands,
// and the host's command metrics.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg, observability.Resource{ServiceName: "nativefetch"})
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanHostCommand)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordCommand(ctx, "plugin:http|fetch", "ok", elapsed)
//
// When neither provider is initialized the global no-op providers are used,
// so spans and instruments are always safe to call.
package observability
