// Package observability wires OpenTelemetry tracing and metrics.
//
// The Component installs OTLP/HTTP exporters when enabled:
//
//	obs := observability.NewComponent(cfg, "fileproxy", version.GetVersion(), "production", log)
//	_ = obs.Start(ctx)
//	defer obs.Stop(ctx)
//	metrics := obs.Metrics() // nil when disabled; every method is nil-safe
//
// Spans go through StartSpan, which uses the global provider and is a
// no-op until a provider is installed.
package observability
