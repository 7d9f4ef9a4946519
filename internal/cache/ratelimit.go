package cache

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// tokenBucket refills continuously at rate tokens per second up to capacity
// and takes one token per call. It returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local rate = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_ms')
	local tokens = tonumber(state[1])
	local last = tonumber(state[2])
	if tokens == nil or last == nil then
		tokens = capacity
		last = now_ms
	end

	local elapsed = math.max(0, now_ms - last)
	tokens = math.min(capacity, tokens + elapsed * rate / 1000)

	local allowed = 0
	local retry_ms = 0
	if tokens >= 1 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.ceil((1 - tokens) * 1000 / rate)
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'last_ms', now_ms)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, math.floor(tokens), retry_ms }
`)

type RateLimitConfig struct {
	Capacity     int
	RefillPerSec float64
	Prefix       string
}

// RateLimit throttles requests per client IP and route. Without Redis, or when
// Redis fails, requests pass through.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	if rdb == nil || cfg.Capacity < 1 || cfg.RefillPerSec <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}

	// Keep idle buckets around until they would be full again.
	ttl := int64(math.Ceil(float64(cfg.Capacity)/cfg.RefillPerSec)) + 1

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s:%s %s", cfg.Prefix, c.ClientIP(), c.Request.Method, c.FullPath())

		vals, err := tokenBucket.Run(c.Request.Context(), rdb, []string{key},
			time.Now().UnixMilli(), cfg.Capacity, cfg.RefillPerSec, ttl,
		).Int64Slice()
		if err != nil || len(vals) != 3 {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))

		if vals[0] != 1 {
			secs := int(math.Ceil(float64(vals[2]) / 1000))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
