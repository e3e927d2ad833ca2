package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRateLimiter implements RateLimiter with in-process token buckets.
// It is the fallback when Redis is unavailable; limits then hold per
// process only.
type MemoryRateLimiter struct {
	config *Config
	stats  RateLimiterStats
	tokens map[string]*TokenBucket
	mu     sync.Mutex
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config: config,
		tokens: make(map[string]*TokenBucket),
	}

	go limiter.cleanupExpiredTokens()

	return limiter
}

// Allow checks if a request should be allowed based on rate limits
func (r *MemoryRateLimiter) Allow(clientID string, endpoint string, method string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.TotalRequests, 1)

	category := r.config.GetEndpointKey(endpoint, method)
	limit := r.GetLimit(endpoint, method)
	key := fmt.Sprintf("%s:%s", clientID, category)

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.getOrCreateTokenBucket(key, limit)

	now := time.Now()
	if !bucket.LastRefill.IsZero() {
		elapsed := now.Sub(bucket.LastRefill)
		tokensToAdd := int(float64(limit.RequestsPerMinute) * elapsed.Minutes())
		if tokensToAdd > 0 {
			bucket.Tokens = min(bucket.Capacity, bucket.Tokens+tokensToAdd)
			bucket.LastRefill = now
		}
	}

	if bucket.Tokens > 0 {
		bucket.Tokens--
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.BlockedRequests, 1)
	resetTime := time.Minute / time.Duration(max(1, limit.RequestsPerMinute))
	return false, resetTime, nil
}

func (r *MemoryRateLimiter) getOrCreateTokenBucket(key string, limit RateLimit) *TokenBucket {
	if bucket, exists := r.tokens[key]; exists {
		return bucket
	}

	bucket := &TokenBucket{
		Capacity:   limit.BurstSize,
		Tokens:     limit.BurstSize,
		RefillRate: limit.RequestsPerMinute,
		LastRefill: time.Now(),
	}

	r.tokens[key] = bucket
	return bucket
}

// GetLimit resolves the configured limit for a request.
func (r *MemoryRateLimiter) GetLimit(endpoint string, method string) RateLimit {
	category := r.config.GetEndpointKey(endpoint, method)
	if limit, exists := r.config.DefaultLimits[category]; exists {
		return limit
	}
	if defaultLimit, exists := r.config.DefaultLimits["default"]; exists {
		return defaultLimit
	}
	return RateLimit{RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute}
}

// GetStats returns current rate limiter statistics
func (r *MemoryRateLimiter) GetStats() RateLimiterStats {
	return RateLimiterStats{
		TotalRequests:   atomic.LoadInt64(&r.stats.TotalRequests),
		BlockedRequests: atomic.LoadInt64(&r.stats.BlockedRequests),
	}
}

// cleanupExpiredTokens drops buckets idle long enough that they are back
// at full capacity anyway.
func (r *MemoryRateLimiter) cleanupExpiredTokens() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for key, bucket := range r.tokens {
			if now.Sub(bucket.LastRefill) > time.Hour {
				delete(r.tokens, key)
			}
		}
		r.mu.Unlock()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
