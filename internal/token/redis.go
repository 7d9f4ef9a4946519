package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "token:"

// RedisStore keeps tokens as JSON strings with a Redis expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(purpose, token string) string {
	return redisPrefix + purpose + ":" + token
}

func (s *RedisStore) Issue(ctx context.Context, purpose string, meta Metadata, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode token metadata: %w", err)
	}

	tok := newToken()
	if err := s.rdb.Set(ctx, redisKey(purpose, tok), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return tok, nil
}

func (s *RedisStore) Peek(ctx context.Context, purpose, token string) (Metadata, error) {
	raw, err := s.rdb.Get(ctx, redisKey(purpose, token)).Bytes()
	return decode(raw, err)
}

func (s *RedisStore) Consume(ctx context.Context, purpose, token string) (Metadata, error) {
	raw, err := s.rdb.GetDel(ctx, redisKey(purpose, token)).Bytes()
	return decode(raw, err)
}

func decode(raw []byte, err error) (Metadata, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode token metadata: %w", err)
	}
	return meta, nil
}
