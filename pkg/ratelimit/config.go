package ratelimit

import (
	"strings"
	"time"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Default rate limits per endpoint category
	DefaultLimits map[string]RateLimit `json:"defaultLimits"`

	// Redis key prefix for rate limiting data
	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// Cleanup interval for expired rate limit data
	CleanupInterval time.Duration `json:"cleanupInterval"`

	// Enable/disable rate limiting
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns a default rate limiting configuration. The
// credential endpoints are deliberately tight: login and forgot-password
// are the two brute-forceable surfaces.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimits: map[string]RateLimit{
			"auth":        {RequestsPerMinute: 10, BurstSize: 5, WindowSize: time.Minute},
			"auth_login":  {RequestsPerMinute: 5, BurstSize: 3, WindowSize: time.Minute},
			"auth_forgot": {RequestsPerMinute: 3, BurstSize: 2, WindowSize: time.Minute},
			"auth_reset":  {RequestsPerMinute: 5, BurstSize: 3, WindowSize: time.Minute},

			"tours":       {RequestsPerMinute: 200, BurstSize: 50, WindowSize: time.Minute},
			"tours_write": {RequestsPerMinute: 30, BurstSize: 10, WindowSize: time.Minute},

			"reviews":       {RequestsPerMinute: 100, BurstSize: 25, WindowSize: time.Minute},
			"reviews_write": {RequestsPerMinute: 20, BurstSize: 5, WindowSize: time.Minute},

			"users": {RequestsPerMinute: 50, BurstSize: 10, WindowSize: time.Minute},

			"health": {RequestsPerMinute: 1000, BurstSize: 100, WindowSize: time.Minute},

			"default": {RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute},
		},
		RedisKeyPrefix:  "ratelimit:",
		CleanupInterval: 5 * time.Minute,
		Enabled:         true,
	}
}

// GetEndpointKey maps a request to its rate limit category.
func (c *Config) GetEndpointKey(endpoint, method string) string {
	switch {
	case endpoint == "/api/v1/auth/login":
		return "auth_login"
	case endpoint == "/api/v1/auth/forgot-password":
		return "auth_forgot"
	case strings.HasPrefix(endpoint, "/api/v1/auth/reset-password"):
		return "auth_reset"
	case strings.HasPrefix(endpoint, "/api/v1/auth"):
		return "auth"
	case endpoint == "/api/v1/health":
		return "health"
	case strings.HasPrefix(endpoint, "/api/v1/users"):
		return "users"
	case strings.Contains(endpoint, "/reviews"):
		if method == "GET" {
			return "reviews"
		}
		return "reviews_write"
	case strings.HasPrefix(endpoint, "/api/v1/tours"):
		if method == "GET" {
			return "tours"
		}
		return "tours_write"
	default:
		return "default"
	}
}
