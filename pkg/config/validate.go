package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rhuss/strom/pkg/api"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be >= 0, got %v", c.Server.ReadTimeout))
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be >= 0, got %v", c.Server.WriteTimeout))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be > 0, got %v", c.Server.ShutdownTimeout))
	}

	if c.Auth.APIKey == "" {
		errs = append(errs, fmt.Errorf("auth.api_key must not be empty"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests must be > 0, got %d", c.RateLimit.Requests))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.window must be > 0, got %v", c.RateLimit.Window))
		}
		switch c.RateLimit.Backend {
		case BackendMemory:
			// valid
		case BackendRedis:
			if c.RateLimit.Redis.Addr == "" {
				errs = append(errs, fmt.Errorf("rate_limit.redis.addr is required when rate_limit.backend is \"redis\""))
			}
		default:
			errs = append(errs, fmt.Errorf("rate_limit.backend must be \"memory\" or \"redis\", got %q", c.RateLimit.Backend))
		}
	}
	if c.RateLimit.GlobalRPS < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.global_rps must be >= 0, got %v", c.RateLimit.GlobalRPS))
	}
	if c.RateLimit.GlobalBurst < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.global_burst must be >= 0, got %d", c.RateLimit.GlobalBurst))
	}

	if c.Stream.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("stream.max_duration must be >= 0, got %v", c.Stream.MaxDuration))
	}
	if c.Stream.MetricsDefaultInterval < api.MinInterval || c.Stream.MetricsDefaultInterval > api.MaxInterval {
		errs = append(errs, fmt.Errorf("stream.metrics_default_interval must be between %d and %d, got %d",
			api.MinInterval, api.MaxInterval, c.Stream.MetricsDefaultInterval))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("observability.log_format must be \"text\" or \"json\", got %q", c.Observability.LogFormat))
	}
	switch strings.ToUpper(c.Observability.LogLevel) {
	case "", "ERROR", "WARN", "WARNING", "INFO", "DEBUG", "TRACE":
		// valid
	default:
		errs = append(errs, fmt.Errorf("observability.log_level must be one of ERROR, WARN, INFO, DEBUG, TRACE, got %q", c.Observability.LogLevel))
	}

	return errors.Join(errs...)
}
