package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultCleanupTTL      = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AuthRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped after cleanupTTL.
type AuthRateLimiter struct {
	limiters   map[string]*limiterEntry
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	cleanupTTL time.Duration
	stopOnce   sync.Once
	stopCh     chan struct{}
}

// NewAuthRateLimiter allows requestsPerMinute per IP, minimum 1
func NewAuthRateLimiter(requestsPerMinute int) *AuthRateLimiter {
	return NewAuthRateLimiterWithTTL(requestsPerMinute, defaultCleanupTTL)
}

func NewAuthRateLimiterWithTTL(requestsPerMinute int, cleanupTTL time.Duration) *AuthRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	if cleanupTTL <= 0 {
		cleanupTTL = defaultCleanupTTL
	}

	al := &AuthRateLimiter{
		limiters:   make(map[string]*limiterEntry),
		rate:       rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:      requestsPerMinute,
		cleanupTTL: cleanupTTL,
		stopCh:     make(chan struct{}),
	}
	go al.cleanupLoop(defaultCleanupInterval)
	return al
}

func (al *AuthRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			al.cleanup()
		case <-al.stopCh:
			return
		}
	}
}

func (al *AuthRateLimiter) cleanup() {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	for key, entry := range al.limiters {
		if now.Sub(entry.lastSeen) > al.cleanupTTL {
			delete(al.limiters, key)
		}
	}
}

// Stop ends the cleanup goroutine
func (al *AuthRateLimiter) Stop() {
	al.stopOnce.Do(func() { close(al.stopCh) })
}

func (al *AuthRateLimiter) getLimiter(key string) *rate.Limiter {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	if entry, ok := al.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(al.rate, al.burst)
	al.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Limit returns middleware that rate limits by client IP.
// c.ClientIP honours X-Forwarded-For only from proxies set via engine.SetTrustedProxies.
func (al *AuthRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !al.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

// Size returns the number of tracked clients
func (al *AuthRateLimiter) Size() int {
	al.mu.Lock()
	defer al.mu.Unlock()
	return len(al.limiters)
}
