package prefstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps preferences in Redis, for runs driven from more than one
// machine.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects lazily to the server at addr.
func NewRedis(addr, prefix string) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// GetInt returns the stored value or def.
func (r *Redis) GetInt(ctx context.Context, key string, def int) (int, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// SetInt stores value without expiry.
func (r *Redis) SetInt(ctx context.Context, key string, value int) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
