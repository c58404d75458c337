package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/debug"
	"github.com/rhuss/strom/pkg/observability"
	"github.com/rhuss/strom/pkg/transport"
)

// Failure reasons used as the metric label.
const (
	ReasonMissing = "missing"
	ReasonInvalid = "invalid"
)

// Middleware creates HTTP middleware from a Chain. A missing credential is
// answered with 401, a rejected one with 403. Neither reaches next.
func Middleware(chain *Chain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := chain.Authenticate(r.Context(), r)

			if result.Decision != Yes {
				reject(w, r, result.Err)
				return
			}

			if result.Identity == nil || result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject", "path", r.URL.Path)
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			debug.Log("auth", "authentication succeeded",
				"subject", result.Identity.Subject,
				"method", result.Identity.Method,
				"path", r.URL.Path,
			)

			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil || errors.Is(err, ErrMissingCredential) {
		observability.AuthFailuresTotal.WithLabelValues(ReasonMissing).Inc()
		debug.Log("auth", "credential missing", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		transport.WriteAPIError(w, api.NewAuthenticationError("API key required. Please provide X-API-Key header."))
		return
	}

	observability.AuthFailuresTotal.WithLabelValues(ReasonInvalid).Inc()
	slog.Warn("authentication failed",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error", err,
	)
	transport.WriteAPIError(w, api.NewPermissionError("Invalid API key"))
}
