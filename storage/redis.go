package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Defaults to "tfhe:entity:".
	Prefix string
	// TTL is the expiration of saved entities. Zero means no expiration.
	TTL time.Duration
}

// RedisStore is a Store backed by Redis,
// so that evaluation keys can be shared between processes.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and returns a RedisStore.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreWithClient returns a RedisStore using an existing client.
// Closing the store closes the client.
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "tfhe:entity:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(h Handle) string {
	return s.prefix + string(h)
}

// Put implements the [Store] interface.
func (s *RedisStore) Put(ctx context.Context, data []byte) (Handle, error) {
	h := ComputeHandle(data)
	if err := s.client.SetNX(ctx, s.key(h), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set %v: %w", h, err)
	}
	return h, nil
}

// Get implements the [Store] interface.
func (s *RedisStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(h)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, h)
		}
		return nil, fmt.Errorf("redis get %v: %w", h, err)
	}
	return data, nil
}

// Delete implements the [Store] interface.
func (s *RedisStore) Delete(ctx context.Context, h Handle) error {
	n, err := s.client.Del(ctx, s.key(h)).Result()
	if err != nil {
		return fmt.Errorf("redis del %v: %w", h, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, h)
	}
	return nil
}

// Exists implements the [Store] interface.
func (s *RedisStore) Exists(ctx context.Context, h Handle) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(h)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %v: %w", h, err)
	}
	return n > 0, nil
}

// Close implements the [Store] interface.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
