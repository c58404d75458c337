package transport

import (
	"context"

	"github.com/rhuss/strom/pkg/api"
)

// StreamHandler runs a single stream session. It is called once per inbound
// request after decoding, authentication and rate limiting have passed.
//
// A nil return means the stream completed. Errors returned before the
// ChunkWriter has been started are reported to the client with a status
// code. Errors returned after that point cannot change the status; the
// transport truncates the response instead.
type StreamHandler interface {
	Stream(ctx context.Context, req api.StreamRequest, w ChunkWriter) error
}

// StreamHandlerFunc is an adapter that allows using an ordinary function
// as a StreamHandler.
type StreamHandlerFunc func(ctx context.Context, req api.StreamRequest, w ChunkWriter) error

// Stream calls f(ctx, req, w).
func (f StreamHandlerFunc) Stream(ctx context.Context, req api.StreamRequest, w ChunkWriter) error {
	return f(ctx, req, w)
}

// ChunkWriter delivers the chunks of one stream to the client. At most one
// session writes to a ChunkWriter, and calls are never concurrent.
type ChunkWriter interface {
	// Start commits the response headers with the session ID and flushes
	// them so the client sees the stream open before the first chunk.
	// Calling Start more than once is a no-op.
	Start(sessionID string) error

	// WriteChunk writes one chunk and flushes it. It calls Start when the
	// writer has not been started yet. An error means the client can no
	// longer be reached.
	WriteChunk(data []byte) error

	// Started reports whether response headers have been committed.
	Started() bool
}

// Outcomer is implemented by errors that classify how a stream ended.
type Outcomer interface {
	Outcome() string
}
