// Command server runs the strom streaming service.
//
// Configuration is read from a YAML file and environment variables, see
// package config. The most common variables:
//
//	STROM_CONFIG               - Path to the YAML config file
//	STROM_PORT                 - Listen port (default: 8000)
//	STROM_API_KEY / API_KEY    - Accepted API key
//	STROM_RATE_LIMIT_REQUESTS  - Requests per window per client and endpoint (default: 100)
//	STROM_RATE_LIMIT_WINDOW    - Rate limit window (default: 1m)
//	STROM_REDIS_ADDR           - Redis address for the shared rate limit store
//	STROM_MAX_STREAM_DURATION  - Upper bound for a single stream (default: 1h)
//	STROM_DEBUG                - Debug categories (auth,ratelimit,dispatch,producer,transport,config)
//	STROM_LOG_LEVEL            - ERROR, WARN, INFO, DEBUG or TRACE
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rhuss/strom/pkg/auth"
	"github.com/rhuss/strom/pkg/auth/apikey"
	"github.com/rhuss/strom/pkg/auth/jwt"
	"github.com/rhuss/strom/pkg/config"
	"github.com/rhuss/strom/pkg/debug"
	"github.com/rhuss/strom/pkg/engine"
	"github.com/rhuss/strom/pkg/ratelimit"
	"github.com/rhuss/strom/pkg/transport"
	transporthttp "github.com/rhuss/strom/pkg/transport/http"
)

// version is set at build time.
var version = "1.0.0"

// redisHealthInterval is how often the rate limit store is pinged.
const redisHealthInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	obs := cfg.Observability
	debug.Init(obs.Debug, obs.LogLevel, obs.LogFormat)
	debug.Log("config", "configuration loaded",
		"port", cfg.Server.Port,
		"rate_limit", cfg.RateLimit.Enabled,
		"backend", cfg.RateLimit.Backend,
		"max_duration", cfg.Stream.MaxDuration,
		"debug", debug.Categories(),
	)

	chain, err := newAuthChain(cfg.Auth)
	if err != nil {
		return fmt.Errorf("creating authenticators: %w", err)
	}
	if cfg.UsesDefaultAPIKey() {
		slog.Warn("using the built-in development API key, set STROM_API_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, rdb, err := newLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	gates := []transporthttp.Gate{auth.Middleware(chain)}
	throttle := ratelimit.NewThrottle(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst)
	if limiter != nil || throttle != nil {
		gates = append(gates, ratelimit.Middleware(limiter, ratelimit.Options{
			Throttle:   throttle,
			ClientAddr: ratelimit.ClientAddr(cfg.RateLimit.TrustForwarded),
		}))
	}

	registry := transport.NewSessionRegistry()
	eng := engine.New(registry, engine.Config{
		MaxDuration: cfg.Stream.MaxDuration,
	})

	metricsPath := ""
	if obs.Metrics.Enabled {
		metricsPath = obs.Metrics.Path
	}

	srv := transporthttp.NewServer(eng, registry,
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithGates(gates...),
		transporthttp.WithMetricsPath(metricsPath),
		transporthttp.WithMetricsInterval(cfg.Stream.MetricsDefaultInterval),
		transporthttp.WithVersion(version),
		transporthttp.WithLogger(slog.Default()),
	)

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.Server.Port))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	if rdb != nil {
		g.Go(func() error {
			watchRedis(ctx, rdb)
			return nil
		})
	}

	return g.Wait()
}

// newAuthChain builds the authenticator chain: the API key first, then
// JWT bearer tokens when a secret is configured.
func newAuthChain(cfg config.AuthConfig) (*auth.Chain, error) {
	authenticators := []auth.Authenticator{apikey.New(cfg.APIKey)}

	if cfg.JWT.Enabled() {
		ja, err := jwt.New(jwt.Config{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		})
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, ja)
		slog.Info("jwt authentication enabled", "issuer", cfg.JWT.Issuer)
	}

	return auth.NewChain(authenticators...), nil
}

// newLimiter creates the per-client limiter. It returns a nil limiter when
// rate limiting is disabled, and the redis client when that backend is used.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Limiter, *redis.Client, error) {
	if !cfg.Enabled {
		slog.Info("rate limiting disabled")
		return nil, nil, nil
	}

	policy := ratelimit.Policy{Requests: cfg.Requests, Window: cfg.Window}

	if cfg.Backend != config.BackendRedis {
		slog.Info("rate limiting enabled", "backend", config.BackendMemory,
			"requests", policy.Requests, "window", policy.Window)
		return ratelimit.NewMemoryLimiter(policy), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("pinging redis at %s: %w", cfg.Redis.Addr, err)
	}

	slog.Info("rate limiting enabled", "backend", config.BackendRedis, "addr", cfg.Redis.Addr,
		"requests", policy.Requests, "window", policy.Window)

	limiter := ratelimit.NewRedisLimiter(rdb, policy, ratelimit.RedisConfig{
		Prefix:  cfg.Redis.KeyPrefix,
		Timeout: cfg.Redis.Timeout,
	})
	return limiter, rdb, nil
}

// watchRedis pings the rate limit store until ctx is done and logs when it
// becomes unreachable or recovers. Requests are admitted while it is down.
func watchRedis(ctx context.Context, rdb *redis.Client) {
	ticker := time.NewTicker(redisHealthInterval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()

		switch {
		case err != nil && healthy:
			slog.Warn("rate limit store unreachable, admitting requests", "error", err)
			healthy = false
		case err == nil && !healthy:
			slog.Info("rate limit store reachable again")
			healthy = true
		}
	}
}
