// Package http is the REST face of the stub messaging backend.
//
// It serves the same routes the client's HTTP gateway talks to, so the
// terminal client can be run against a separate process during development.
// Authentication, request tracing, access logging and response compression
// are handled here before a request reaches the backend.
package http
