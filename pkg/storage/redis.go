package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisStore keeps snapshots as plain redis strings without expiry.
// The redis client applies the namespace.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	value, err := s.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.client.Set(ctx, key, value, 0)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.client.Del(ctx, key)
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Driver() string { return config.StorageDriverRedis }
