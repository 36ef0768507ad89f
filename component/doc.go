// Package component defines lifecycle-managed infrastructure pieces
// (storage backend, telemetry exporters, HTTP server) and a Registry that
// starts them in order and stops them in reverse.
//
// Components may also implement Describable to appear in the startup
// summary.
package component
