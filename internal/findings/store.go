// Package findings remembers which findings were already reported so repeated
// probes of the same endpoint do not produce duplicates.
package findings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims dedupe keys.  With a Redis client the claims are shared by
// every process using the same prefix; without one they live in memory.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewStore returns a store backed by rdb.  rdb may be nil.
func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl, seen: map[string]time.Time{}}
}

// Shared reports whether claims are stored in Redis.
func (s *Store) Shared() bool { return s.rdb != nil }

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Claim returns true the first time key is seen within the TTL.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, s.key(key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("claim %s: %w", key, err)
		}
		return ok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if exp, ok := s.seen[key]; ok && (s.ttl <= 0 || now.Before(exp)) {
		return false, nil
	}
	s.seen[key] = now.Add(s.ttl)
	return true, nil
}

// Forget drops key so the next Claim succeeds again.
func (s *Store) Forget(ctx context.Context, key string) error {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
			return fmt.Errorf("forget %s: %w", key, err)
		}
		return nil
	}
	s.mu.Lock()
	delete(s.seen, key)
	s.mu.Unlock()
	return nil
}
