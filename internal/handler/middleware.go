package handler

import (
	"log"
	"net/http"
	"sync"

	"leasebot/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuth validates the X-API-Key header. With a configured key, the
// header must match it exactly; otherwise any token of the minimum length is
// accepted.
func APIKeyAuth(cfg *config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			return
		}
		if cfg.APIKey != "" {
			if key != cfg.APIKey {
				log.Printf("Invalid API key from %s", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				return
			}
		} else if len(key) < cfg.MinTokenLength {
			log.Printf("API key below minimum length from %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}

// RateLimiter enforces a per-client-IP request budget over a sliding window
// using a token bucket sized to the window's allowance.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows maxRequests per window per client IP.
func NewRateLimiter(maxRequests, windowSeconds int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(maxRequests) / float64(windowSeconds)),
		burst:    maxRequests,
	}
}

func (r *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[clientIP] = limiter
	}
	return limiter
}

// Middleware rejects requests over the budget with 429.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.limiterFor(c.ClientIP()).Allow() {
			log.Printf("Rate limit exceeded for %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds the standard hardening headers to every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}
