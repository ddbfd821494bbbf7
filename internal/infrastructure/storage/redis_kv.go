// internal/infrastructure/storage/redis_kv.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV is the Redis-backed durable key-value store used for cart
// collections and applied-coupon blobs. Values are whole JSON documents
// replaced on every write.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV creates a key-value store with the given expiry for all keys
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{
		client: client,
		ttl:    ttl,
	}
}

// Read returns the value stored under key, or (nil, nil) when absent
func (s *RedisKV) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write stores the value under key, refreshing the expiry
func (s *RedisKV) Write(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
