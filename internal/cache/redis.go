// Package cache holds the Redis-backed HTTP concerns: response caching for
// public listings and rate limiting for the auth endpoints. Every piece
// degrades to a pass-through when Redis is unavailable.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to addr and pings it. It returns nil when addr is
// empty or the server cannot be reached, so callers run without Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without it", slog.String("addr", addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	return client
}
