package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces limiter keys in a shared redis.
const DefaultKeyPrefix = "strom:ratelimit:"

// allowScript checks and increments a fixed-window counter in one round
// trip. A refused request is not counted. Returns {allowed, count, pttl}.
var allowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= limit then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl < 0 then
    redis.call('PEXPIRE', KEYS[1], window)
    ttl = window
  end
  return {0, current, ttl}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], window)
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], window)
  ttl = window
end
return {1, current, ttl}
`)

// RedisLimiter is a fixed-window limiter whose counters live in redis, so
// several server replicas share one quota per client.
type RedisLimiter struct {
	client  redis.Scripter
	policy  Policy
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// RedisConfig configures a RedisLimiter.
type RedisConfig struct {
	Prefix string
	// Timeout bounds each limiter round trip. Zero means no extra bound
	// beyond the request context.
	Timeout time.Duration
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.Scripter, policy Policy, cfg RedisConfig) *RedisLimiter {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisLimiter{
		client:  client,
		policy:  policy,
		prefix:  prefix,
		timeout: cfg.Timeout,
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.policy.Unlimited() {
		return Decision{Allowed: true}, nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	d := Decision{Limit: l.policy.Requests}

	res, err := allowScript.Run(ctx, l.client, []string{l.prefix + key},
		l.policy.Requests, l.policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return d, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if len(res) != 3 {
		return d, fmt.Errorf("ratelimit: redis: unexpected script reply %v", res)
	}

	allowed, count, ttl := res[0] == 1, int(res[1]), time.Duration(res[2])*time.Millisecond
	d.ResetAt = l.now().Add(ttl)

	if !allowed {
		d.RetryAfter = ttl
		return d, ErrRateLimitExceeded
	}

	d.Allowed = true
	d.Remaining = max(l.policy.Requests-count, 0)
	return d, nil
}
