// Package transport provides the HTTP middleware chain and error mapping
// for the figaro transport layer.
//
// The transport layer bridges external clients and the chart pipeline. It
// deserializes incoming requests, dispatches them to the pipeline and
// session stores, and serializes figures, answers, and structured errors
// back to the client as JSON.
//
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. The HTTP adapter
// itself lives in the http subpackage.
package transport
