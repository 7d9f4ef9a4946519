package token

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	meta      Metadata
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory. Tokens are lost on restart and
// are not shared between instances; use RedisStore in deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func memoryKey(purpose, token string) string {
	return purpose + ":" + token
}

func (s *MemoryStore) Issue(_ context.Context, purpose string, meta Metadata, ttl time.Duration) (string, error) {
	tok := newToken()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[memoryKey(purpose, tok)] = entry{meta: copyMeta(meta), expiresAt: s.now().Add(ttl)}
	return tok, nil
}

func (s *MemoryStore) Peek(_ context.Context, purpose, token string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[memoryKey(purpose, token)]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrInvalidToken
	}
	return copyMeta(e.meta), nil
}

func (s *MemoryStore) Consume(_ context.Context, purpose, token string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(purpose, token)
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrInvalidToken
	}
	delete(s.entries, key)
	if !s.now().Before(e.expiresAt) {
		return nil, ErrInvalidToken
	}
	return e.meta, nil
}

// sweep drops expired entries. Callers hold s.mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func copyMeta(m Metadata) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
