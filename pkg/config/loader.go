package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, STROM_CONFIG env, ./config.yaml, /etc/strom/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Default API key when none is configured
//  6. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = DefaultAPIKey
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. STROM_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/strom/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("STROM_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/strom/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
// Unparseable values are ignored and the previous value is kept.
func applyEnvOverrides(cfg *Config) {
	// API_KEY is the legacy name; STROM_API_KEY wins when both are set.
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("STROM_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("STROM_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}
	if v := os.Getenv("STROM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STROM_RATE_LIMIT_BACKEND"); v != "" {
		cfg.RateLimit.Backend = v
	}
	if v := os.Getenv("STROM_REDIS_ADDR"); v != "" {
		cfg.RateLimit.Redis.Addr = v
	}
	if v := os.Getenv("STROM_RATE_LIMIT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Requests = n
		}
	}
	if v := os.Getenv("STROM_RATE_LIMIT_WINDOW"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.RateLimit.Window = d
		}
	}
	if v := os.Getenv("STROM_MAX_STREAM_DURATION"); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.Stream.MaxDuration = d
		}
	}
}

// parseDuration accepts Go duration syntax or a plain number of seconds.
func parseDuration(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// auth.api_key_file -> auth.api_key
	if cfg.Auth.APIKeyFile != "" && cfg.Auth.APIKey == "" {
		val, err := readSecretFile(cfg.Auth.APIKeyFile)
		if err != nil {
			return fmt.Errorf("auth.api_key_file: %w", err)
		}
		cfg.Auth.APIKey = val
	}

	// auth.jwt.secret_file -> auth.jwt.secret
	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	// rate_limit.redis.password_file -> rate_limit.redis.password
	if cfg.RateLimit.Redis.PasswordFile != "" && cfg.RateLimit.Redis.Password == "" {
		val, err := readSecretFile(cfg.RateLimit.Redis.PasswordFile)
		if err != nil {
			return fmt.Errorf("rate_limit.redis.password_file: %w", err)
		}
		cfg.RateLimit.Redis.Password = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
