// Package redis provides a Redis-backed cart storage backend. Carts live
// under prefixed keys with a TTL, so abandoned sessions age out the same way
// browser storage can be evicted out from under the application.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
)

const keyPrefix = "storefront:cart:"

var _ cart.Storage = (*Storage)(nil)

// Storage stores cart payloads as plain string values in Redis.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL and verifies the connection with a
// ping. A zero ttl stores carts without expiry.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Storage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis URL")
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "connect to redis")
	}

	return &Storage{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{client: client, ttl: ttl}
}

// Get returns the stored value for key, or cart.ErrNotFound.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return v, nil
}

// Set stores value under key and refreshes the TTL.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Delete removes the value for key. Absent keys are not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// Ping reports whether the Redis connection is healthy; wired into the
// readiness probe.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
