package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "juv:payload:"

// Redis is a Store backed by a shared Redis instance, for deployments running
// more than one replica against the same upstream.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		panic("cache: redis client required")
	}
	return &Redis{client: client}
}

// NewRedisClient builds a go-redis client from address/password settings.
func NewRedisClient(addr, password string, useTLS bool) *redis.Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *Redis) SetNX(ctx context.Context, key string, value []byte) error {
	// No TTL: upstream clinical payloads are immutable once written.
	if err := r.client.SetNX(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache: redis setnx %s: %w", key, err)
	}
	return nil
}
