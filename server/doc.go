// Package server provides the HTTP server: a Gin engine mounted on a
// ServeMux, served over HTTP/1.1 and h2c.
//
// Cross-cutting behaviour runs as net/http middleware around the whole
// handler so it also covers preflights and unmatched routes:
//
//   - Recovery: panics become 500 {"error":"Internal error"}
//   - RequestID: X-Request-Id propagation into the log context
//   - CORS: echo-if-allowed origin resolution, OPTIONS short-circuit
//   - BodySizeLimit: 413 past server.max_body_size
//   - RequestLogger: one line per request, level by status class
//
// Built-in endpoints (server/endpoint): /health and /version.
package server
