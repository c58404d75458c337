package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/observability"
)

// stubLimiter returns a fixed decision and error, recording the keys it saw.
type stubLimiter struct {
	decision Decision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (Decision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("error body has no error object")
	}
	return resp.Error
}

func TestMiddleware_Allowed(t *testing.T) {
	reset := time.Unix(1700000060, 0)
	lim := &stubLimiter{decision: Decision{Allowed: true, Limit: 100, Remaining: 42, ResetAt: reset}}
	h := Middleware(lim, Options{})(okHandler())

	req := httptest.NewRequest("POST", "/api/v1/stream/text", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	tests := []struct {
		header string
		want   string
	}{
		{HeaderLimit, "100"},
		{HeaderRemaining, "42"},
		{HeaderReset, "1700000060"},
		{HeaderRetryAfter, ""},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}
	if len(lim.keys) != 1 || lim.keys[0] != "POST /api/v1/stream/text|192.0.2.1" {
		t.Errorf("keys = %v", lim.keys)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	lim := &stubLimiter{decision: Decision{Allowed: true, Limit: 10, Remaining: 9}}
	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/stream/{kind}", Middleware(lim, Options{})(okHandler()))

	for _, path := range []string{"/api/v1/stream/text", "/api/v1/stream/audio"} {
		req := httptest.NewRequest("POST", path, nil)
		req.RemoteAddr = "192.0.2.1:1234"
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}

	want := "POST /api/v1/stream/{kind}|192.0.2.1"
	for i, k := range lim.keys {
		if k != want {
			t.Errorf("keys[%d] = %q, want %q", i, k, want)
		}
	}
}

func TestMiddleware_Exceeded(t *testing.T) {
	before := observability.CounterValue(observability.RateLimitRejectedTotal, "client")

	lim := &stubLimiter{
		decision: Decision{Limit: 100, Remaining: 0, ResetAt: time.Now().Add(30 * time.Second), RetryAfter: 29500 * time.Millisecond},
		err:      ErrRateLimitExceeded,
	}
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := Middleware(lim, Options{})(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/stream/text", nil))

	if called {
		t.Error("next handler called for refused request")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get(HeaderRetryAfter); got != "30" {
		t.Errorf("Retry-After = %q, want %q", got, "30")
	}
	if got := rec.Header().Get(HeaderRemaining); got != "0" {
		t.Errorf("%s = %q, want %q", HeaderRemaining, got, "0")
	}
	apiErr := decodeError(t, rec)
	if apiErr.Type != api.ErrorTypeTooManyRequests {
		t.Errorf("type = %q, want %q", apiErr.Type, api.ErrorTypeTooManyRequests)
	}
	if apiErr.Code != api.CodeRateLimited {
		t.Errorf("code = %q, want %q", apiErr.Code, api.CodeRateLimited)
	}

	after := observability.CounterValue(observability.RateLimitRejectedTotal, "client")
	if after-before != 1 {
		t.Errorf("rejected counter delta = %v, want 1", after-before)
	}
}

func TestMiddleware_FailOpen(t *testing.T) {
	before := counterValue(t, observability.RateLimitErrorsTotal)

	lim := &stubLimiter{err: errors.New("connection refused")}
	h := Middleware(lim, Options{})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/stream/text", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (fail open)", rec.Code)
	}
	if rec.Header().Get(HeaderLimit) != "" {
		t.Error("quota headers set on backend failure")
	}
	if got := counterValue(t, observability.RateLimitErrorsTotal) - before; got != 1 {
		t.Errorf("error counter delta = %v, want 1", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("reading counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMiddleware_Throttle(t *testing.T) {
	lim := &stubLimiter{decision: Decision{Allowed: true}}
	h := Middleware(lim, Options{Throttle: NewThrottle(1, 1)})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != api.CodeOverloaded {
		t.Errorf("code = %q, want %q", got, api.CodeOverloaded)
	}
	if len(lim.keys) != 1 {
		t.Errorf("limiter consulted %d times, want 1", len(lim.keys))
	}
}

func TestMiddleware_NilLimiter(t *testing.T) {
	h := Middleware(nil, Options{})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_WithMemoryLimiter(t *testing.T) {
	lim := NewMemoryLimiter(Policy{Requests: 3, Window: time.Minute})
	h := Middleware(lim, Options{})(okHandler())

	codes := make([]int, 0, 5)
	for range 5 {
		req := httptest.NewRequest("POST", "/api/v1/stream/logs", nil)
		req.RemoteAddr = "198.51.100.7:999"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{200, 200, 200, 429, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i+1, codes[i], want[i])
		}
	}
}

func TestRetrySeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{-time.Second, 1},
		{100 * time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{59 * time.Second, 59},
	}
	for _, tt := range tests {
		if got := retrySeconds(tt.in); got != tt.want {
			t.Errorf("retrySeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
