package ratelimit

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/debug"
	"github.com/rhuss/strom/pkg/observability"
	"github.com/rhuss/strom/pkg/transport"
)

// Response headers describing the caller's quota.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Options configures the rate limit middleware.
type Options struct {
	// Throttle is the optional server-wide cap, checked first.
	Throttle *Throttle

	// ClientAddr derives the client part of the limiter key.
	// Defaults to ClientAddr(false).
	ClientAddr func(*http.Request) string
}

// Middleware enforces limiter on every request it wraps. Refused requests
// get a 429 JSON error and never reach next. Backend failures are logged
// and the request is let through.
func Middleware(limiter Limiter, opts Options) func(http.Handler) http.Handler {
	clientAddr := opts.ClientAddr
	if clientAddr == nil {
		clientAddr = ClientAddr(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.Throttle.Allow() {
				observability.RateLimitRejectedTotal.WithLabelValues("global").Inc()
				slog.Warn("server throttle exceeded", "path", r.URL.Path)
				w.Header().Set(HeaderRetryAfter, "1")
				transport.WriteAPIError(w, api.NewTooManyRequestsError(api.CodeOverloaded, "server is busy, retry shortly"))
				return
			}

			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			client := clientAddr(r)
			key := Key(endpointOf(r), client)

			d, err := limiter.Allow(r.Context(), key)
			switch {
			case err == nil:
				setHeaders(w, d)
				debug.Log("ratelimit", "request allowed", "key", key, "remaining", d.Remaining)
			case errors.Is(err, ErrRateLimitExceeded):
				observability.RateLimitRejectedTotal.WithLabelValues("client").Inc()
				slog.Warn("rate limit exceeded",
					"client", client,
					"path", r.URL.Path,
					"retry_after", d.RetryAfter,
				)
				setHeaders(w, d)
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(retrySeconds(d.RetryAfter)))
				transport.WriteAPIError(w, api.NewTooManyRequestsError(api.CodeRateLimited, "Rate limit exceeded"))
				return
			default:
				// Fail open.
				observability.RateLimitErrorsTotal.Inc()
				slog.Error("rate limiter unavailable, allowing request",
					"client", client,
					"error", err,
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, d Decision) {
	if d.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(d.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		h.Set(HeaderReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

// retrySeconds rounds up to whole seconds, with a minimum of one.
func retrySeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
