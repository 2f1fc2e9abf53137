// internal/store/redis.go
package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the mapping in a Redis hash (one field per ticket number)
// and mirrors it in memory so reads never hit the network.
type RedisStore struct {
	mu      sync.Mutex
	client  *redis.Client
	key     string
	entries map[int]string
}

// NewRedisStore loads the full hash at key into memory.
func NewRedisStore(ctx context.Context, client *redis.Client, key string) (*RedisStore, error) {
	fields, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load ticket hash %s: %w", key, err)
	}

	entries := make(map[int]string, len(fields))
	for field, recordID := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("ticket hash %s: bad field %q", key, field)
		}
		entries[n] = recordID
	}

	return &RedisStore{client: client, key: key, entries: entries}, nil
}

func (s *RedisStore) Get(n int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[n]
	return id, ok
}

func (s *RedisStore) Put(ctx context.Context, n int, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[n]; exists {
		return nil
	}

	// HSETNX keeps the first write even if another process raced us.
	set, err := s.client.HSetNX(ctx, s.key, strconv.Itoa(n), recordID).Result()
	if err != nil {
		return fmt.Errorf("store ticket %d: %w", n, err)
	}
	if !set {
		existing, err := s.client.HGet(ctx, s.key, strconv.Itoa(n)).Result()
		if err != nil {
			return fmt.Errorf("read back ticket %d: %w", n, err)
		}
		s.entries[n] = existing
		return nil
	}

	s.entries[n] = recordID
	return nil
}

func (s *RedisStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
