package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores every collection document under its own key
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to Redis at addr and verifies the connection
func NewRedisBackend(ctx context.Context, addr, prefix string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (r *RedisBackend) key(c Collection) string {
	return r.prefix + string(c)
}

func (r *RedisBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(c)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return data, nil
}

func (r *RedisBackend) Write(ctx context.Context, c Collection, data []byte) error {
	if err := r.client.Set(ctx, r.key(c), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
