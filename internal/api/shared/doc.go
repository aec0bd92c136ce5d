// Package shared holds the request and response helpers used by both the
// handlers and the middleware: JSON encoding, error bodies, and the
// request-scoped trace ID.
package shared
