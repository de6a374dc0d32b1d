package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server started by "glean serve".
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// ScraperConfig controls fetching and politeness.
type ScraperConfig struct {
	// UserAgent is the identity sent to sites and matched against robots.txt.
	UserAgent string `yaml:"user_agent"` // default: "glean/0.1.0 (Go)"

	// Delay is the pause before each page request.
	Delay time.Duration `yaml:"delay"` // default: 1s

	// PolicyTimeout bounds the robots.txt fetch.
	PolicyTimeout time.Duration `yaml:"policy_timeout"` // default: 10s

	// FetchTimeout bounds the page fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // default: 30s

	// MaxBodyBytes caps the bytes read from any response.
	MaxBodyBytes int64 `yaml:"max_body_bytes"` // default: 10 MiB

	// RespectRobots enables the robots.txt check.
	RespectRobots bool `yaml:"respect_robots"` // default: true

	// Impersonate uses a Chrome TLS fingerprint for page requests.
	Impersonate bool `yaml:"impersonate"` // default: false

	// RobotsCacheTTL keeps robots.txt bodies in memory for the server and
	// MCP processes. Zero disables the cache. The CLI never caches.
	RobotsCacheTTL time.Duration `yaml:"robots_cache_ttl"` // default: 10m

	// RobotsCacheSize bounds the number of cached robots.txt bodies.
	RobotsCacheSize int `yaml:"robots_cache_size"` // default: 1000
}

// AuthConfig controls API key authentication for the server.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: false

	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting for the server.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 1

	// Burst is the maximum burst size.
	Burst int `yaml:"burst"` // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "text"
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Scraper: ScraperConfig{
			UserAgent:       "glean/0.1.0 (Go)",
			Delay:           time.Second,
			PolicyTimeout:   10 * time.Second,
			FetchTimeout:    30 * time.Second,
			MaxBodyBytes:    10 << 20,
			RespectRobots:   true,
			RobotsCacheTTL:  10 * time.Minute,
			RobotsCacheSize: 1000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from environment variables over the defaults.
func Load() *Config {
	cfg := Defaults()
	applyEnv(cfg)
	return cfg
}

// applyEnv overrides cfg with any GLEAN_* variables that are set.
func applyEnv(cfg *Config) {
	cfg.Server.Host = envOr("GLEAN_HOST", cfg.Server.Host)
	cfg.Server.Port = envIntOr("GLEAN_PORT", cfg.Server.Port)
	cfg.Server.Mode = envOr("GLEAN_MODE", cfg.Server.Mode)

	cfg.Scraper.UserAgent = envOr("GLEAN_USER_AGENT", cfg.Scraper.UserAgent)
	cfg.Scraper.Delay = envDurationOr("GLEAN_DELAY", cfg.Scraper.Delay)
	cfg.Scraper.PolicyTimeout = envDurationOr("GLEAN_POLICY_TIMEOUT", cfg.Scraper.PolicyTimeout)
	cfg.Scraper.FetchTimeout = envDurationOr("GLEAN_FETCH_TIMEOUT", cfg.Scraper.FetchTimeout)
	cfg.Scraper.MaxBodyBytes = int64(envIntOr("GLEAN_MAX_BODY_BYTES", int(cfg.Scraper.MaxBodyBytes)))
	cfg.Scraper.RespectRobots = envBoolOr("GLEAN_RESPECT_ROBOTS", cfg.Scraper.RespectRobots)
	cfg.Scraper.Impersonate = envBoolOr("GLEAN_IMPERSONATE", cfg.Scraper.Impersonate)
	cfg.Scraper.RobotsCacheTTL = envDurationOr("GLEAN_ROBOTS_CACHE_TTL", cfg.Scraper.RobotsCacheTTL)
	cfg.Scraper.RobotsCacheSize = envIntOr("GLEAN_ROBOTS_CACHE_SIZE", cfg.Scraper.RobotsCacheSize)

	cfg.Auth.Enabled = envBoolOr("GLEAN_AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.APIKeys = envSliceOr("GLEAN_API_KEYS", cfg.Auth.APIKeys)

	cfg.RateLimit.RequestsPerSecond = envFloatOr("GLEAN_RATE_RPS", cfg.RateLimit.RequestsPerSecond)
	cfg.RateLimit.Burst = envIntOr("GLEAN_RATE_BURST", cfg.RateLimit.Burst)

	cfg.Log.Level = envOr("GLEAN_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("GLEAN_LOG_FORMAT", cfg.Log.Format)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
