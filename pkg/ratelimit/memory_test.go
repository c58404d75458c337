package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock returns a controllable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(requests int, window time.Duration) (*MemoryLimiter, *fakeClock) {
	clock := newFakeClock()
	l := NewMemoryLimiter(Policy{Requests: requests, Window: window})
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(100, time.Minute)
	ctx := context.Background()

	for i := range 100 {
		d, err := l.Allow(ctx, "k")
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i+1, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d: Allowed = false", i+1)
		}
		if d.Remaining != 99-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, d.Remaining, 99-i)
		}
	}

	d, err := l.Allow(ctx, "k")
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("request 101: err = %v, want ErrRateLimitExceeded", err)
	}
	if d.Allowed {
		t.Error("request 101: Allowed = true")
	}
	if d.Limit != 100 {
		t.Errorf("Limit = %d, want 100", d.Limit)
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %v, want %v", d.RetryAfter, time.Minute)
	}
}

func TestMemoryLimiter_RefusalsNotCounted(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, "k")
	l.Allow(ctx, "k")
	for range 10 {
		if _, err := l.Allow(ctx, "k"); !errors.Is(err, ErrRateLimitExceeded) {
			t.Fatalf("err = %v, want ErrRateLimitExceeded", err)
		}
	}

	if got := l.windows["k"].count; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}

	// The window start is unchanged by refusals.
	clock.Advance(time.Minute)
	if _, err := l.Allow(ctx, "k"); err != nil {
		t.Errorf("after window: unexpected error: %v", err)
	}
}

func TestMemoryLimiter_WindowRollover(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	if _, err := l.Allow(ctx, "k"); err != nil {
		t.Fatalf("first: %v", err)
	}

	clock.Advance(30 * time.Second)
	d, err := l.Allow(ctx, "k")
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("second: err = %v, want ErrRateLimitExceeded", err)
	}
	if d.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", d.RetryAfter)
	}

	clock.Advance(30 * time.Second)
	d, err = l.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("after rollover: %v", err)
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
	if want := clock.Now().Add(time.Minute); !d.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestMemoryLimiter_KeysIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	keys := []string{
		Key("POST /api/v1/stream/{kind}", "10.0.0.1"),
		Key("POST /api/v1/stream/{kind}", "10.0.0.2"),
		Key("GET /api/v1/sessions", "10.0.0.1"),
	}
	for _, k := range keys {
		if _, err := l.Allow(ctx, k); err != nil {
			t.Errorf("Allow(%q): unexpected error: %v", k, err)
		}
	}
	for _, k := range keys {
		if _, err := l.Allow(ctx, k); !errors.Is(err, ErrRateLimitExceeded) {
			t.Errorf("Allow(%q) second: err = %v, want ErrRateLimitExceeded", k, err)
		}
	}
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter(Policy{Requests: 50, Window: time.Hour})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Allow(ctx, "shared"); err == nil {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 50 {
		t.Errorf("allowed = %d, want 50", got)
	}
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	if got := l.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	clock.Advance(2 * time.Minute)
	l.Allow(ctx, "c")
	if got := l.Len(); got != 1 {
		t.Errorf("Len after sweep = %d, want 1", got)
	}
}

func TestMemoryLimiter_Unlimited(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"zero requests", Policy{Requests: 0, Window: time.Minute}},
		{"zero window", Policy{Requests: 10, Window: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewMemoryLimiter(tt.policy)
			for range 1000 {
				if _, err := l.Allow(context.Background(), "k"); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if l.Len() != 0 {
				t.Errorf("Len = %d, want 0", l.Len())
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Requests != 100 || p.Window != time.Minute {
		t.Errorf("DefaultPolicy = %+v, want 100 per minute", p)
	}
	if p.Unlimited() {
		t.Error("DefaultPolicy should not be unlimited")
	}
}
