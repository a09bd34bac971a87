package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/tenant"
)

// RedisTenantCache implements TenantCache using Redis. Suitable for
// multi-instance deployments where all instances should see an invalidation.
type RedisTenantCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTenantCache creates a Redis-backed tenant cache and verifies the
// connection up front.
func NewRedisTenantCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisTenantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTenantCache{
		client:    client,
		keyPrefix: "tenant:directory:",
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisTenantCacheWithClient creates a cache over an existing client.
// Useful for tests sharing a client.
func NewRedisTenantCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTenantCache {
	return &RedisTenantCache{
		client:    client,
		keyPrefix: "tenant:directory:",
		ttl:       ttl,
		logger:    logger,
	}
}

// Get returns the cached tenant for the key. Redis failures degrade to a miss.
func (c *RedisTenantCache) Get(ctx context.Context, key string) (*tenant.Tenant, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("tenant cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var t tenant.Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.logger.Warn("tenant cache entry corrupt", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, c.keyPrefix+key)
		return nil, false
	}
	return &t, true
}

// Set stores the tenant under the key with the configured TTL
func (c *RedisTenantCache) Set(ctx context.Context, key string, t *tenant.Tenant) {
	data, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("tenant cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("tenant cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete drops the key
func (c *RedisTenantCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		c.logger.Warn("tenant cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying Redis client
func (c *RedisTenantCache) Close() error {
	return c.client.Close()
}
