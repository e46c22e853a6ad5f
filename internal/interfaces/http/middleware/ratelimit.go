package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsync/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window, per-key request counter kept in memory.
// Good enough for a single instance; a multi-instance deployment would
// move the counters to Redis.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*rateBucket
	limit       int
	window      time.Duration
	cleanupTick time.Duration
}

type rateBucket struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*rateBucket),
		limit:       limit,
		window:      window,
		cleanupTick: window * 2,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.clients {
			if now.Sub(b.lastReset) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether a request from the given key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.clients[key]

	if !exists {
		rl.clients[key] = &rateBucket{tokens: rl.limit - 1, lastReset: now}
		return true
	}
	if now.Sub(b.lastReset) >= rl.window {
		b.tokens = rl.limit - 1
		b.lastReset = now
		return true
	}
	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Remaining returns the requests left in the current window for the key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.clients[key]
	if !exists {
		return rl.limit
	}
	if time.Since(b.lastReset) >= rl.window {
		return rl.limit
	}
	return b.tokens
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey limits requests using a custom key extractor, e.g. the
// login username for the auth endpoints
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				"RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", requestID))
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.Remaining(key)))

		c.Next()
	}
}
