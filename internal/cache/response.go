package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	headerCache = "X-Cache"
	scanCount   = 100
)

// ResponseCache stores successful anonymous GET responses in Redis.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	// paths limits caching to requests under these URL prefixes.
	paths []string
}

// NewResponseCache caches responses for requests under paths. A nil client
// yields a cache whose middleware does nothing.
func NewResponseCache(rdb *redis.Client, ttl time.Duration, paths ...string) *ResponseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, prefix: "resp:", paths: paths}
}

// Key derives the cache key from the path and the sorted query parameters.
func Key(prefix, path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteString("?")
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(v)
			sb.WriteString("&")
		}
	}
	raw := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(raw))
	return prefix + hex.EncodeToString(sum[:])
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// bodyWriter tees the response body so it can be stored after the handler ran.
type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (rc *ResponseCache) cacheable(c *gin.Context) bool {
	return rc != nil && rc.rdb != nil &&
		c.Request.Method == http.MethodGet &&
		c.GetHeader("Authorization") == "" &&
		hasPrefix(c.Request.URL.Path, rc.paths)
}

// Middleware serves cached responses and stores fresh 200 responses.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rc.cacheable(c) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := Key(rc.prefix, c.Request.URL.Path, c.Request.URL.Query())

		if body, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
			c.Header(headerCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		} else if err != redis.Nil {
			slog.WarnContext(ctx, "response cache read failed", slog.Any("error", err))
		}

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header(headerCache, "MISS")

		c.Next()

		if w.Status() != http.StatusOK || w.buf.Len() == 0 {
			return
		}
		if err := rc.rdb.Set(context.WithoutCancel(ctx), key, w.buf.Bytes(), rc.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "response cache write failed", slog.Any("error", err))
		}
	}
}

// Invalidate drops every cached response.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
	if rc == nil || rc.rdb == nil {
		return nil
	}

	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := rc.rdb.Scan(ctx, cursor, rc.prefix+"*", scanCount).Result()
		if err != nil {
			return err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := rc.rdb.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateOnWrite clears the cache after a successful write under one of paths.
func (rc *ResponseCache) InvalidateOnWrite(paths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if rc == nil || rc.rdb == nil {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest || !hasPrefix(c.Request.URL.Path, paths) {
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := rc.Invalidate(ctx); err != nil {
			slog.WarnContext(ctx, "response cache invalidation failed", slog.Any("error", err))
		}
	}
}
