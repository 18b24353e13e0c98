package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a KV backed by a Redis instance. Journal collections are small
// JSON blobs, so plain GET/SET is sufficient.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed KV
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Load implements KV
func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis load %q: %w", key, err)
	}
	return value, nil
}

// Save implements KV. Values persist without expiry; the journal is the
// system of record, not a cache.
func (r *Redis) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis save %q: %w", key, err)
	}
	return nil
}
