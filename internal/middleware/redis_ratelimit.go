package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const redisLimitTimeout = 100 * time.Millisecond

// slidingWindow admits up to limit requests per window using a sorted set of
// request timestamps. Returns {allowed, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window = tonumber(ARGV[1])
	local limit = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window * 1000)
	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window * 1000)
		return {1, limit - current - 1}
	end
	return {0, 0}
`)

func windowFor(rps, burst int) time.Duration {
	if rps <= 0 {
		rps = 1
	}
	w := time.Duration(burst) * time.Second / time.Duration(rps)
	if w < time.Second {
		w = time.Second
	}
	return w
}

// limitKey runs the script for key and writes the response headers. It
// reports false when Redis could not answer, leaving the decision to the caller.
func limitKey(c *gin.Context, client *redis.Client, key string, rps, burst int) (allowed bool, ok bool) {
	window := windowFor(rps, burst)
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	ctx, cancel := context.WithTimeout(c.Request.Context(), redisLimitTimeout)
	defer cancel()
	res, err := slidingWindow.Run(ctx, client, []string{key},
		int(window.Seconds()), burst, now.UnixMilli(), member).Int64Slice()
	if err != nil || len(res) < 2 {
		return false, false
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(burst))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(now.Add(window).Unix(), 10))
	if res[0] == 0 {
		c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return false, true
	}
	return true, true
}

// HybridRateLimit limits by client IP in Redis. When the script fails the
// request is judged by an in-memory bucket instead.
func HybridRateLimit(client *redis.Client, rps int, burst int) gin.HandlerFunc {
	return hybridLimit(client, rps, burst, ipKey)
}

// UserRateLimit limits authenticated callers by user id and anonymous ones by
// IP. It must run after the auth middleware. A nil client limits in memory only.
func UserRateLimit(client *redis.Client, rps int, burst int) gin.HandlerFunc {
	return hybridLimit(client, rps, burst, func(c *gin.Context) string {
		if uid, ok := UserID(c); ok {
			return fmt.Sprintf("rate_limit_user:%d", uid)
		}
		return ipKey(c)
	})
}

func ipKey(c *gin.Context) string { return "rate_limit:" + c.ClientIP() }

func hybridLimit(client *redis.Client, rps, burst int, keyOf func(*gin.Context) string) gin.HandlerFunc {
	memory := newMemoryLimiter(rps, burst)
	return func(c *gin.Context) {
		key := keyOf(c)
		if client != nil {
			if allowed, ok := limitKey(c, client, key, rps, burst); ok {
				if allowed {
					c.Next()
				}
				return
			}
		}
		if !memory.allow(key, time.Now()) {
			rejectLimited(c)
			return
		}
		c.Next()
	}
}
