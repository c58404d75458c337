package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/strom/pkg/transport"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"client id kept", "abc-123", true},
		{"missing", "", false},
		{"contains space", "abc 123", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"non ascii", "idé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID string
			h := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = transport.RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if tt.keep && got != tt.header {
				t.Errorf("%s = %q, want %q", HeaderRequestID, got, tt.header)
			}
			if !tt.keep && (got == tt.header || !strings.HasPrefix(got, "req_")) {
				t.Errorf("%s = %q, want a generated ID", HeaderRequestID, got)
			}
			if ctxID != got {
				t.Errorf("context ID = %q, want %q", ctxID, got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api/v1/stream/text", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if called {
		t.Error("preflight reached the next handler")
	}

	want := map[string]string{
		"Access-Control-Allow-Origin":      "https://app.example.com",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Allow-Headers":     "Authorization, Content-Type",
		"Access-Control-Max-Age":           "600",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST included", got)
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	expose := rec.Header().Get("Access-Control-Expose-Headers")
	for _, name := range []string{HeaderSessionID, "Retry-After", "X-RateLimit-Remaining"} {
		if !strings.Contains(expose, name) {
			t.Errorf("Access-Control-Expose-Headers = %q, missing %s", expose, name)
		}
	}
}

func TestCORSWithoutOrigin(t *testing.T) {
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestPreflightBypassesGates(t *testing.T) {
	gate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	adapter := newTestAdapter(&stubHandler{}, nil, func(c *Config) { c.Gates = []Gate{gate} })

	req := httptest.NewRequest("OPTIONS", "/api/v1/stream/text", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
