package ratelimit

import "golang.org/x/time/rate"

// Throttle caps the total request rate of the server regardless of client.
// A nil *Throttle allows everything.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a token-bucket throttle allowing rps requests per
// second with the given burst. It returns nil when rps is not positive.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = max(int(rps), 1)
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether one more request may proceed now.
func (t *Throttle) Allow() bool {
	if t == nil {
		return true
	}
	return t.limiter.Allow()
}
