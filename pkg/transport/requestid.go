package transport

import (
	"context"

	"github.com/rhuss/strom/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// stream. If the incoming request context already carries a request ID
// (set by the HTTP adapter from the X-Request-ID header), that value is
// used. Otherwise, a new ID is generated with api.NewRequestID.
func RequestID() Middleware {
	return func(next StreamHandler) StreamHandler {
		return StreamHandlerFunc(func(ctx context.Context, req api.StreamRequest, w ChunkWriter) error {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, api.NewRequestID())
			}
			return next.Stream(ctx, req, w)
		})
	}
}
