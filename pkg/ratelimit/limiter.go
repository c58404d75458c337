// Package ratelimit enforces per-client request quotas in front of the
// stream endpoints.
//
// A quota is a fixed number of requests per window, tracked separately for
// every (endpoint, client address) pair. Requests that would exceed the
// quota are refused without being counted, so a client hammering a closed
// window does not push its own reset further out. Two Limiter
// implementations are provided: MemoryLimiter keeps counters in process,
// RedisLimiter shares them across replicas through a Lua script.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimitExceeded is returned by Limiter.Allow when the key has no
// quota left in the current window.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Limiter decides whether a request identified by key may proceed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow counts one request against key. It returns ErrRateLimitExceeded
	// when the quota is used up; in that case nothing is counted. Any other
	// error is a backend failure. The Decision is populated in both cases
	// so callers can set response headers.
	Allow(ctx context.Context, key string) (Decision, error)
}

// Decision describes the state of a key's quota after a call to Allow.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the current window ends.
	ResetAt time.Time
	// RetryAfter is how long a refused client should wait.
	RetryAfter time.Duration
}

// Policy is a fixed quota per window.
type Policy struct {
	Requests int
	Window   time.Duration
}

// DefaultPolicy allows 100 requests per minute.
func DefaultPolicy() Policy {
	return Policy{Requests: 100, Window: time.Minute}
}

// Unlimited reports whether the policy disables limiting.
func (p Policy) Unlimited() bool {
	return p.Requests <= 0 || p.Window <= 0
}
