package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/transport"
)

// Response headers set on every stream.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"
)

const eventStreamType = "text/event-stream"

// chunkWriter implements transport.ChunkWriter over an http.ResponseWriter.
// Each chunk is flushed as soon as it is written so the client receives it
// without waiting for the next one.
type chunkWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	kind    api.Kind
	started bool
}

var _ transport.ChunkWriter = (*chunkWriter)(nil)

func newChunkWriter(w http.ResponseWriter, kind api.Kind) *chunkWriter {
	return &chunkWriter{
		w:    w,
		rc:   http.NewResponseController(w),
		kind: kind,
	}
}

// Start commits the 200 status and stream headers.
func (c *chunkWriter) Start(sessionID string) error {
	if c.started {
		return nil
	}
	c.started = true

	h := c.w.Header()
	h.Set("Content-Type", c.kind.ContentType())
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	if c.eventStream() {
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
	}
	if sessionID != "" {
		h.Set(HeaderSessionID, sessionID)
	}

	// Streams outlive the server write timeout meant for plain responses.
	if err := c.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("clearing write deadline: %w", err)
	}

	c.w.WriteHeader(http.StatusOK)
	return c.flush()
}

// WriteChunk writes data and flushes it.
func (c *chunkWriter) WriteChunk(data []byte) error {
	if err := c.Start(""); err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("writing chunk: %w", err)
	}
	return c.flush()
}

// Started reports whether the response headers have been committed.
func (c *chunkWriter) Started() bool {
	return c.started
}

func (c *chunkWriter) eventStream() bool {
	return c.kind.ContentType() == eventStreamType
}

// writeErrorEvent sends a final SSE error event:
//
//	event: error
//	data: {"error":{...}}
//
// Write errors are ignored; the connection is aborted right after.
func (c *chunkWriter) writeErrorEvent(apiErr *api.APIError) {
	data, err := json.Marshal(api.ErrorResponse{Error: apiErr})
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(c.w, "event: error\ndata: %s\n\n", data); err != nil {
		return
	}
	c.flush()
}

func (c *chunkWriter) flush() error {
	if err := c.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flushing chunk: %w", err)
	}
	return nil
}
