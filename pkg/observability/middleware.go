package observability

import (
	"net/http"
	"strconv"
	"time"
)

// unmatchedRoute labels requests that no route pattern matched.
const unmatchedRoute = "unmatched"

// MetricsMiddleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - strom_requests_total (counter): incremented per request with method, status class, and route labels
//   - strom_request_duration_seconds (histogram): request duration with method and route labels
//
// The route label is the ServeMux pattern that matched the request, which
// keeps label cardinality bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		// Aborted streams leave by panicking, so record on the way out
		// and re-panic.
		defer func() {
			rec := recover()
			status := sw.status
			if rec != nil && !sw.written {
				status = http.StatusInternalServerError
			}

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}

			// Build a status class label like "2xx", "4xx", "5xx".
			statusStr := strconv.Itoa(status/100) + "xx"

			RequestsTotal.WithLabelValues(r.Method, statusStr, route).Inc()
			RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())

			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(sw, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code and delegates to the underlying writer.
func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying writer and marks the status as written.
func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush delegates to the underlying writer if it implements http.Flusher.
// Chunked streams depend on it.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter, enabling http.ResponseController
// and similar utilities to access the original writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
