package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// memoryLimiter keeps one token bucket per key in process memory. Buckets that
// sat idle long enough to refill completely are dropped on the next sweep.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	idle    time.Duration
	swept   time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newMemoryLimiter(rps, burst int) *memoryLimiter {
	idle := time.Minute
	if rps > 0 {
		if full := time.Duration(burst) * time.Second / time.Duration(rps); full > idle {
			idle = full
		}
	}
	return &memoryLimiter{
		buckets: map[string]*bucket{},
		rate:    float64(rps),
		burst:   float64(burst),
		idle:    idle,
	}
}

// allow takes a token from key's bucket, reporting false when it is empty.
func (l *memoryLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[key] = b
	}
	b.tokens = min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.rate)
	b.seen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *memoryLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idle {
		return
	}
	l.swept = now
	for key, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, key)
		}
	}
}

func rejectLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// RateLimit limits each client IP with an in-memory token bucket.
func RateLimit(rps int, burst int) gin.HandlerFunc {
	limiter := newMemoryLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			rejectLimited(c)
			return
		}
		c.Next()
	}
}
