package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per derived key, held in process
// memory. Counters reset when their window ends; behind multiple replicas
// each instance counts independently.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string]*windowBucket
}

type windowBucket struct {
	count int
	ends  time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*windowBucket),
	}
}

// allow counts one request against key and reports whether it fits the
// window, with the seconds left until the window resets when it does not.
func (rl *RateLimiter) allow(key string, now time.Time) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]

	if !ok || now.After(b.ends) {
		rl.buckets[key] = &windowBucket{count: 1, ends: now.Add(rl.window)}
		return true, 0
	}

	if b.count >= rl.limit {
		retryAfter := int(time.Until(b.ends).Seconds())

		if retryAfter < 0 {
			retryAfter = 0
		}

		return false, retryAfter
	}

	b.count++

	return true, 0
}

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		ok, retryAfter := rl.allow(key, time.Now())

		if !ok {
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   true,
				"message": "Too many requests from this IP. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// KeyByIP buckets unauthenticated endpoints by client address.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user id, falling back to the
// address when no identity was verified yet.
func KeyByUserOrIP(c *gin.Context) string {
	claims, ok := ClaimsFromContext(c)

	if ok && claims != nil {
		return "user:" + strconv.FormatInt(claims.UserID, 10)
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// ClientIP already honors X-Forwarded-For / X-Real-IP when trusted
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
