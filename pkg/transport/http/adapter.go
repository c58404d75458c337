// Package http serves strom stream sessions over HTTP/1.1 chunked
// responses.
//
// Every stream kind has its own route under /api/v1/stream. A request
// passes decode and validation first, then the configured gates
// (authentication, rate limiting), and finally the transport.StreamHandler
// which writes chunks through a flushing ChunkWriter.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/debug"
	"github.com/rhuss/strom/pkg/observability"
	"github.com/rhuss/strom/pkg/transport"
)

// StreamPrefix is the path prefix of all stream endpoints.
const StreamPrefix = "/api/v1/stream/"

// Gate is HTTP middleware that may refuse a request before it reaches the
// stream handler. Gates are applied in order, the first one outermost.
type Gate func(http.Handler) http.Handler

// Adapter serves the stream API over HTTP.
// It routes requests to the stream handler and serializes errors.
type Adapter struct {
	handler  transport.StreamHandler
	registry *transport.SessionRegistry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize bounds request bodies. Larger bodies get 413.
	MaxBodySize int64

	// MetricsInterval is the metrics stream interval in seconds used when
	// the request does not give one.
	MetricsInterval int

	// MetricsPath serves prometheus metrics when non-empty.
	MetricsPath string

	// Gates protect the stream and session endpoints.
	Gates []Gate

	// Service and Version are reported by the info endpoints.
	Service string
	Version string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:     1 << 20, // 1 MB
		MetricsInterval: api.DefaultInterval,
		MetricsPath:     "/metrics",
		Service:         "strom",
		Version:         "1.0.0",
	}
}

// NewAdapter creates an HTTP adapter for handler. Middleware is applied
// to the handler in the given order. Sessions listed and cancelled through
// the session endpoints are looked up in registry, which may be nil to
// disable those endpoints.
func NewAdapter(handler transport.StreamHandler, registry *transport.SessionRegistry, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		handler = transport.Chain(middlewares...)(handler)
	}

	a := &Adapter{
		handler:  handler,
		registry: registry,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	for _, kind := range api.Kinds {
		a.mux.Handle(routeFor(kind), a.decode(kind, a.gated(http.HandlerFunc(a.handleStream))))
	}

	if registry != nil {
		a.mux.Handle("GET /api/v1/sessions", a.gated(http.HandlerFunc(a.handleListSessions)))
		a.mux.Handle("DELETE /api/v1/sessions/{id}", a.gated(http.HandlerFunc(a.handleCancelSession)))
	}

	a.mux.HandleFunc("GET /health", a.handleHealth)
	a.mux.HandleFunc("GET /{$}", a.handleRoot)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// routeFor returns the ServeMux pattern of a stream kind. Metrics takes no
// body and is served on GET, every other kind on POST.
func routeFor(kind api.Kind) string {
	if kind == api.KindMetrics {
		return "GET " + StreamPrefix + string(kind)
	}
	return "POST " + StreamPrefix + string(kind)
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// request ID propagation, CORS and request metrics.
func (a *Adapter) Handler() http.Handler {
	return requestIDMiddleware(corsMiddleware(observability.MetricsMiddleware(a.mux)))
}

// gated wraps h with the configured gates, the first gate outermost.
func (a *Adapter) gated(h http.Handler) http.Handler {
	for i := len(a.config.Gates) - 1; i >= 0; i-- {
		h = a.config.Gates[i](h)
	}
	return h
}

type streamRequestKey struct{}

// streamRequestFromContext returns the request stored by decode.
func streamRequestFromContext(ctx context.Context) api.StreamRequest {
	req, _ := ctx.Value(streamRequestKey{}).(api.StreamRequest)
	return req
}

// decode reads and validates the request for kind and stores it in the
// request context. Nothing downstream runs for an invalid request.
func (a *Adapter) decode(kind api.Kind, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.StreamRequest

		if kind == api.KindMetrics {
			mreq, apiErr := api.DecodeMetricsQuery(r.URL.Query(), a.config.MetricsInterval)
			if apiErr != nil {
				reject(w, kind, apiErr, 0)
				return
			}
			req = mreq
		} else {
			// Validate Content-Type.
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					reject(w, kind,
						api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
						http.StatusUnsupportedMediaType,
					)
					return
				}
			}

			// Limit body size.
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.config.MaxBodySize))
			if err != nil {
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					reject(w, kind,
						api.NewInvalidRequestError("body", "request body too large (max "+strconv.FormatInt(a.config.MaxBodySize, 10)+" bytes)"),
						http.StatusRequestEntityTooLarge,
					)
					return
				}
				reject(w, kind, api.NewInvalidRequestError("body", "reading request body: "+err.Error()), 0)
				return
			}

			var apiErr *api.APIError
			if req, apiErr = api.DecodeRequest(kind, body); apiErr != nil {
				reject(w, kind, apiErr, 0)
				return
			}
		}

		ctx := context.WithValue(r.Context(), streamRequestKey{}, req)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject writes a decode failure. A zero status is derived from the error.
func reject(w http.ResponseWriter, kind api.Kind, apiErr *api.APIError, status int) {
	debug.Log("transport", "request rejected", "kind", kind, "error", apiErr.Error())
	if status == 0 {
		status = transport.HTTPStatusFromError(apiErr)
	}
	transport.WriteErrorResponse(w, apiErr, status)
}

// handleStream runs the stream session for a decoded, admitted request.
func (a *Adapter) handleStream(w http.ResponseWriter, r *http.Request) {
	req := streamRequestFromContext(r.Context())
	if req == nil {
		transport.WriteAPIError(w, api.NewServerError("stream request missing from context"))
		return
	}

	cw := newChunkWriter(w, req.Kind())
	if err := a.handler.Stream(r.Context(), req, cw); err != nil {
		a.writeHandlerError(w, cw, err)
	}
}

// writeHandlerError reports a stream error. Before the stream started it
// is a JSON error response. Afterwards the status is already sent: a
// normal early end just finishes the body, a failure aborts the
// connection so the client cannot mistake the truncated body for a
// complete one. Event streams get an error event first.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, cw *chunkWriter, err error) {
	if !cw.Started() {
		var apiErr *api.APIError
		if !errors.As(err, &apiErr) {
			apiErr = api.NewServerError(err.Error())
		}
		transport.WriteAPIError(w, apiErr)
		return
	}

	if transport.EndedNormally(err) {
		return
	}

	if cw.eventStream() {
		cw.writeErrorEvent(api.NewServerError("stream failed"))
	}
	panic(http.ErrAbortHandler)
}

func (a *Adapter) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionList{
		Object: "list",
		Data:   a.registry.List(),
	})
}

// sessionList is the response body of GET /api/v1/sessions.
type sessionList struct {
	Object string                  `json:"object"`
	Data   []transport.SessionInfo `json:"data"`
}

// handleCancelSession handles DELETE /api/v1/sessions/{id}.
func (a *Adapter) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateSessionID(id) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("id", "malformed session ID"),
			http.StatusBadRequest,
		)
		return
	}

	if !a.registry.Cancel(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("session "+id+" not found"))
		return
	}

	debug.Log("transport", "session cancelled by client", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": a.config.Service,
	})
}

// serviceInfo is the response body of GET /.
type serviceInfo struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints int      `json:"endpoints"`
	Streams   []string `json:"streams"`
}

func (a *Adapter) handleRoot(w http.ResponseWriter, r *http.Request) {
	streams := make([]string, 0, len(api.Kinds))
	for _, kind := range api.Kinds {
		streams = append(streams, routeFor(kind))
	}
	writeJSON(w, http.StatusOK, serviceInfo{
		Message:   a.config.Service + " streaming service",
		Version:   a.config.Version,
		Endpoints: len(api.Kinds),
		Streams:   streams,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
