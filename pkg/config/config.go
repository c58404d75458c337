// Package config provides unified configuration for the strom server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (STROM_ prefix, plus the legacy API_KEY)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// DefaultAPIKey is the development key used when none is configured.
// The server logs a warning at startup while it is in effect.
const DefaultAPIKey = "dev-api-key-12345-change-in-production"

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the strom server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Stream        StreamConfig        `yaml:"stream"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s, not applied to streams
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	APIKey     string    `yaml:"api_key"`      // default: DefaultAPIKey
	APIKeyFile string    `yaml:"api_key_file"` // _file variant for api_key
	JWT        JWTConfig `yaml:"jwt"`
}

// JWTConfig enables bearer token authentication when a secret is set.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
}

// Enabled reports whether a JWT secret is configured.
func (j JWTConfig) Enabled() bool {
	return j.Secret != ""
}

// RateLimitConfig holds per-client quota settings.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`         // default: true
	Requests       int           `yaml:"requests"`        // default: 100
	Window         time.Duration `yaml:"window"`          // default: 1m
	Backend        string        `yaml:"backend"`         // "memory" or "redis", default: "memory"
	Redis          RedisConfig   `yaml:"redis"`
	GlobalRPS      float64       `yaml:"global_rps"`      // 0 disables the server-wide throttle
	GlobalBurst    int           `yaml:"global_burst"`    // default: ceil(global_rps)
	TrustForwarded bool          `yaml:"trust_forwarded"` // key clients by X-Forwarded-For
}

// RedisConfig holds the shared rate limit store settings.
type RedisConfig struct {
	Addr         string        `yaml:"addr"` // default: "localhost:6379"
	Password     string        `yaml:"password"`
	PasswordFile string        `yaml:"password_file"` // _file variant for password
	DB           int           `yaml:"db"`
	KeyPrefix    string        `yaml:"key_prefix"` // default: "strom:ratelimit:"
	Timeout      time.Duration `yaml:"timeout"`    // default: 100ms
}

// StreamConfig holds stream session settings.
type StreamConfig struct {
	MaxDuration            time.Duration `yaml:"max_duration"`             // default: 1h, 0 disables
	MetricsDefaultInterval int           `yaml:"metrics_default_interval"` // seconds, default: 1
}

// ObservabilityConfig holds monitoring and logging settings.
type ObservabilityConfig struct {
	Metrics   MetricsConfig `yaml:"metrics"`
	LogLevel  string        `yaml:"log_level"`  // default: "INFO"
	LogFormat string        `yaml:"log_format"` // "text" or "json", default: "text"
	Debug     string        `yaml:"debug"`      // comma-separated debug categories
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
			Backend:  BackendMemory,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "strom:ratelimit:",
				Timeout:   100 * time.Millisecond,
			},
		},
		Stream: StreamConfig{
			MaxDuration:            time.Hour,
			MetricsDefaultInterval: 1,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			LogLevel:  "INFO",
			LogFormat: "text",
		},
	}
}

// UsesDefaultAPIKey reports whether the built-in development key is in effect.
func (c *Config) UsesDefaultAPIKey() bool {
	return c.Auth.APIKey == DefaultAPIKey
}
