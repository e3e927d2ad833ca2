package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tours-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client and endpoint category. A
// limiter failure never blocks the request; the API degrades to
// unlimited rather than unavailable.
func RateLimit(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := normalizePath(c.Request.URL.Path)
		method := c.Request.Method

		allowed, resetTime, err := limiter.Allow(clientID(c), path, method)
		if err != nil {
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		limit := limiter.GetLimit(path, method)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.RequestsPerMinute))
		c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))
		c.Header("X-RateLimit-Burst", strconv.Itoa(limit.BurstSize))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(resetTime.Seconds())))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetTime).Unix(), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": fmt.Sprintf("Too many requests, try again in %v", resetTime),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientID identifies the caller: the principal when authenticated, the
// client IP otherwise. Credential endpoints run before Auth, so those are
// always throttled per IP.
func clientID(c *gin.Context) string {
	if principal, ok := PrincipalFrom(c); ok {
		return "user:" + principal.ID.Hex()
	}
	return "ip:" + c.ClientIP()
}

// normalizePath replaces id path segments so all requests against one
// resource share a bucket.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if isObjectID(segment) {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, "/")
}

func isObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
