// Package app assembles the proxy: configuration, storage backend,
// observability, HTTP server and routes. The long-running server, the
// serverless entrypoint and the tests all build the handler through Mount.
package app
