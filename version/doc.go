// Package version exposes build metadata set through -ldflags or read from
// the Go build info.
package version
