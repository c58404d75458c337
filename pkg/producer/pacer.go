package producer

import (
	"context"
	"time"
)

// Pacer waits out the delay between two chunks. Wait must return early
// with ctx.Err() when ctx is cancelled.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function to the Pacer interface.
type PacerFunc func(ctx context.Context, d time.Duration) error

// Wait implements Pacer.
func (f PacerFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

var (
	// RealTime sleeps for the full delay using a timer.
	RealTime Pacer = PacerFunc(sleep)

	// Instant never sleeps. It still reports cancellation.
	Instant Pacer = PacerFunc(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	})
)

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
