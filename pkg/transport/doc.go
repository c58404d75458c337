// Package transport defines the handler interfaces and middleware chain for
// the strom HTTP streaming transport.
//
// The transport layer bridges external clients and the stream dispatcher.
// The HTTP adapter decodes an inbound call into a validated
// api.StreamRequest, runs the request gates (authentication, rate limiting)
// and hands the request to a StreamHandler together with a ChunkWriter
// bound to the open connection.
//
// # Handler Interfaces
//
//   - StreamHandler runs one stream session: it binds the request to a
//     producer and pumps chunks into the ChunkWriter until the producer is
//     exhausted, fails, or the context is cancelled.
//   - ChunkWriter abstracts the response body. It commits headers once and
//     then delivers each chunk immediately, flushing after every write.
//
// # Middleware
//
// The middleware chain wraps StreamHandler with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
//
// # Sessions
//
// SessionRegistry tracks in-flight sessions so an operator can list them
// and cancel one explicitly, and so process shutdown can cancel them all
// before the HTTP server drains.
package transport
