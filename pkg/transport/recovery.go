package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rhuss/strom/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to server error responses. The server continues to
// accept new requests after a panic is recovered. http.ErrAbortHandler
// is re-raised so deliberate connection aborts still reach net/http.
func Recovery() Middleware {
	return func(next StreamHandler) StreamHandler {
		return StreamHandlerFunc(func(ctx context.Context, req api.StreamRequest, w ChunkWriter) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Stream(ctx, req, w)
		})
	}
}
