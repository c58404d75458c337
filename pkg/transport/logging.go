package transport

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/observability"
)

// Outcomes that end a stream without it being a failure.
var quietOutcomes = map[string]bool{
	observability.OutcomeClientDisconnect: true,
	observability.OutcomeCancelled:        true,
	observability.OutcomeMaxDuration:      true,
}

// EndedNormally reports whether err classifies a stream that stopped
// early without failing: the client left, the session was cancelled, or
// it reached its maximum duration.
func EndedNormally(err error) bool {
	var outcomer Outcomer
	return errors.As(err, &outcomer) && quietOutcomes[outcomer.Outcome()]
}

// Logging returns middleware that emits one structured log entry per stream
// with the request ID, session ID, stream kind, volume written, duration,
// and how the stream ended.
//
// Streams ended by the client going away are logged at INFO as
// "stream cancelled" and never as failures. Requests rejected before the
// stream started are logged at WARN. Everything else is an ERROR.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next StreamHandler) StreamHandler {
		return StreamHandlerFunc(func(ctx context.Context, req api.StreamRequest, w ChunkWriter) error {
			start := time.Now()
			cw := &countingWriter{ChunkWriter: w}

			err := next.Stream(ctx, req, cw)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("kind", string(req.Kind())),
				slog.Duration("duration", time.Since(start)),
			}
			if cw.sessionID != "" {
				attrs = append(attrs,
					slog.String("session_id", cw.sessionID),
					slog.Int("chunks", cw.chunks),
					slog.Int("bytes", cw.bytes),
				)
			}

			var apiErr *api.APIError
			var outcomer Outcomer
			switch {
			case err == nil:
				logger.LogAttrs(ctx, slog.LevelInfo, "stream completed", attrs...)
			case errors.As(err, &outcomer) && quietOutcomes[outcomer.Outcome()]:
				attrs = append(attrs, slog.String("outcome", outcomer.Outcome()))
				logger.LogAttrs(ctx, slog.LevelInfo, "stream cancelled", attrs...)
			case errors.As(err, &apiErr) && !w.Started():
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelWarn, "stream rejected", attrs...)
			default:
				if errors.As(err, &outcomer) {
					attrs = append(attrs, slog.String("outcome", outcomer.Outcome()))
				}
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "stream failed", attrs...)
			}

			return err
		})
	}
}

// countingWriter tracks what passes through a ChunkWriter for the log entry.
type countingWriter struct {
	ChunkWriter
	sessionID string
	chunks    int
	bytes     int
}

func (c *countingWriter) Start(sessionID string) error {
	if c.sessionID == "" {
		c.sessionID = sessionID
	}
	return c.ChunkWriter.Start(sessionID)
}

func (c *countingWriter) WriteChunk(data []byte) error {
	if err := c.ChunkWriter.WriteChunk(data); err != nil {
		return err
	}
	c.chunks++
	c.bytes += len(data)
	return nil
}
