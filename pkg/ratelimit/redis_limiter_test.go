package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client, _ := setupTestRedis(t)

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 5,
		BurstSize:         3,
		WindowSize:        time.Minute,
	}
	limiter := NewRedisRateLimiter(client, config)

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow("ip:10.0.0.1", "/api/v1/unknown", "GET")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within burst should pass", i+1)
	}

	allowed, resetTime, err := limiter.Allow("ip:10.0.0.1", "/api/v1/unknown", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, resetTime, time.Duration(0))
}

func TestRedisRateLimiter_ClientsAreIndependent(t *testing.T) {
	client, _ := setupTestRedis(t)

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 5, BurstSize: 1, WindowSize: time.Minute}
	limiter := NewRedisRateLimiter(client, config)

	allowed, _, err := limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, err = limiter.Allow("ip:10.0.0.2", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed, "a different client has its own window")
}

func TestRedisRateLimiter_WindowReset(t *testing.T) {
	client, mr := setupTestRedis(t)

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 5, BurstSize: 1, WindowSize: time.Second}
	limiter := NewRedisRateLimiter(client, config)

	allowed, _, err := limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Drop the stored window so the next request starts fresh, the same
	// effect Redis TTL expiry has on a live instance.
	mr.FlushAll()

	allowed, _, err = limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_LoginIsTighterThanReads(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, DefaultConfig())

	login := limiter.GetLimit("/api/v1/auth/login", "POST")
	reads := limiter.GetLimit("/api/v1/tours", "GET")

	assert.Less(t, login.RequestsPerMinute, reads.RequestsPerMinute)
	assert.Less(t, login.BurstSize, reads.BurstSize)
}

func TestRedisRateLimiter_Stats(t *testing.T) {
	client, _ := setupTestRedis(t)

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 5, BurstSize: 1, WindowSize: time.Minute}
	limiter := NewRedisRateLimiter(client, config)

	limiter.Allow("ip:10.0.0.1", "/x", "GET")
	limiter.Allow("ip:10.0.0.1", "/x", "GET")

	stats := limiter.GetStats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.BlockedRequests)
}

func TestRedisRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)

	config := DefaultConfig()
	config.Enabled = false
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 1, BurstSize: 1, WindowSize: time.Minute}
	limiter := NewRedisRateLimiter(client, config)

	for i := 0; i < 10; i++ {
		allowed, _, err := limiter.Allow("ip:10.0.0.1", "/x", "GET")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestMemoryRateLimiter_Allow(t *testing.T) {
	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 5, BurstSize: 2, WindowSize: time.Minute}
	limiter := NewMemoryRateLimiter(config)

	allowed, _, err := limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, resetTime, err := limiter.Allow("ip:10.0.0.1", "/x", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, resetTime, time.Duration(0))
}

func TestEndpointCategories(t *testing.T) {
	config := DefaultConfig()

	cases := []struct {
		endpoint string
		method   string
		want     string
	}{
		{"/api/v1/auth/login", "POST", "auth_login"},
		{"/api/v1/auth/forgot-password", "POST", "auth_forgot"},
		{"/api/v1/auth/reset-password/abc123", "PATCH", "auth_reset"},
		{"/api/v1/auth/signup", "POST", "auth"},
		{"/api/v1/tours", "GET", "tours"},
		{"/api/v1/tours", "POST", "tours_write"},
		{"/api/v1/tours/*", "PATCH", "tours_write"},
		{"/api/v1/reviews/*", "DELETE", "reviews_write"},
		{"/api/v1/tours/*/reviews", "GET", "reviews"},
		{"/api/v1/users", "GET", "users"},
		{"/api/v1/health", "GET", "health"},
		{"/api/v1/something-else", "GET", "default"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.endpoint, func(t *testing.T) {
			assert.Equal(t, tc.want, config.GetEndpointKey(tc.endpoint, tc.method))
		})
	}
}
