package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/tlrouter"
)

// DefaultRedisPrefix namespaces key entries in a shared Redis.
const DefaultRedisPrefix = "tlrouter:keys:"

// Redis reads keys from Redis strings named <prefix><provider>, so a fleet
// of routers can share one key set.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis key store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379/0")
	KeyPrefix string // Prefix for all keys (default: DefaultRedisPrefix)
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	store := NewRedisFromClient(redis.NewClient(opts), cfg.KeyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// NewRedisFromClient creates a Redis key store from an existing client.
func NewRedisFromClient(client *redis.Client, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisPrefix
	}
	return &Redis{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// APIKey implements tlrouter.KeyStore. A missing entry is not an error.
func (r *Redis) APIKey(ctx context.Context, provider tlrouter.ProviderID) (string, error) {
	val, err := r.client.Get(ctx, r.keyPrefix+string(provider)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores key for provider without expiration.
func (r *Redis) Set(ctx context.Context, provider tlrouter.ProviderID, key string) error {
	return r.client.Set(ctx, r.keyPrefix+string(provider), key, 0).Err()
}

// Remove deletes the key for provider.
func (r *Redis) Remove(ctx context.Context, provider tlrouter.ProviderID) error {
	return r.client.Del(ctx, r.keyPrefix+string(provider)).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ping implements Pinger.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
