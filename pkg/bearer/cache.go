package bearer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists tokens for Cached. Get returns ErrCacheMiss when the key is
// absent or expired.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

// Cached decorates provider with a token cache. A store read failure falls back
// to the provider; a write failure is ignored since the fetched token is still valid.
// Empty tokens are never cached.
func Cached(provider TokenProvider, store Store, key string, ttl time.Duration) TokenProvider {
	return func(ctx context.Context) (string, error) {
		if token, err := store.Get(ctx, key); err == nil && token != "" {
			return token, nil
		}

		token, err := provider(ctx)
		if err != nil {
			return "", err
		}
		if Normalize(token) != "" && ttl > 0 {
			_ = store.Set(ctx, key, token, ttl)
		}
		return token, nil
	}
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expiresAt) {
		return "", ErrCacheMiss
	}
	return e.token, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// RedisStore shares tokens between processes through Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Store that keeps tokens under prefix+key.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "restkit:token:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", errors.Join(ErrStoreFailure, err)
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, token, ttl).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
