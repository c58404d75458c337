package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a fixed-window limiter that keeps one counter per key in
// memory. Counting is atomic under a single mutex, so concurrent requests
// for the same key never lose an increment.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

// NewMemoryLimiter creates an in-process limiter for the policy.
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  policy,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if l.policy.Unlimited() {
		return Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.policy.Window {
		// New window.
		w = &window{start: now}
		l.windows[key] = w
	}

	d := Decision{
		Limit:   l.policy.Requests,
		ResetAt: w.start.Add(l.policy.Window),
	}

	if w.count >= l.policy.Requests {
		d.RetryAfter = d.ResetAt.Sub(now)
		return d, ErrRateLimitExceeded
	}

	w.count++
	d.Allowed = true
	d.Remaining = l.policy.Requests - w.count
	return d, nil
}

// sweepLocked drops expired windows at most once per window length, which
// keeps memory bounded by the number of clients active in one window.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.policy.Window {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.policy.Window {
			delete(l.windows, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
