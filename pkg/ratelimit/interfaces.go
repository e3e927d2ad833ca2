package ratelimit

import (
	"time"
)

// RateLimiter decides whether a request from a client may proceed. When a
// request is denied the returned duration says how long until the window
// resets.
type RateLimiter interface {
	Allow(clientID string, endpoint string, method string) (bool, time.Duration, error)
	GetLimit(endpoint string, method string) RateLimit
	GetStats() RateLimiterStats
}

// RateLimit defines the configuration for rate limiting
type RateLimit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

// RateLimiterStats provides statistics about rate limiting
type RateLimiterStats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
}

// TokenBucket tracks per-client request budget for the in-memory limiter.
type TokenBucket struct {
	Capacity   int       `json:"capacity"`
	Tokens     int       `json:"tokens"`
	RefillRate int       `json:"refillRate"`
	LastRefill time.Time `json:"lastRefill"`
}
