// Package errors defines the proxy's error taxonomy.
//
// Every failure that reaches a client is an AppError carrying an HTTP status
// and a human-readable message; the wire form is always {"error": message}.
// Errors that are not AppErrors are mapped to 500 by FromError.
package errors
