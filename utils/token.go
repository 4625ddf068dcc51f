package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers revoked tokens until they would have expired anyway.
type TokenStore interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryTokenStore is the single-instance blacklist.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Revoke(_ context.Context, token string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = until
	return nil
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, exists := s.tokens[token]
	s.mu.RUnlock()
	if !exists {
		return false, nil
	}
	if s.now().Before(expiry) {
		return true, nil
	}

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return false, nil
}

// Cleanup drops expired entries and returns how many were removed.
func (s *MemoryTokenStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, expiry := range s.tokens {
		if now.After(expiry) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

const revokedKeyPrefix = "hotel:revoked:"

// RedisTokenStore shares the blacklist between instances; keys expire with the token.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+token, 1, ttl).Err()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
