package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/infrastructure/config"
)

// TenantCacheFactory creates tenant caches based on configuration
type TenantCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TenantCacheFactoryOption is a functional option for configuring the factory
type TenantCacheFactoryOption func(*TenantCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TenantCacheFactoryOption {
	return func(f *TenantCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) TenantCacheFactoryOption {
	return func(f *TenantCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTenantCacheFactory creates a new factory
func NewTenantCacheFactory(cfg config.RedisConfig, opts ...TenantCacheFactoryOption) *TenantCacheFactory {
	f := &TenantCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache builds the tenant cache per configuration. With Redis disabled
// it returns the in-memory cache directly; with Redis enabled it tries Redis
// first and falls back to in-memory when allowed.
func (f *TenantCacheFactory) CreateCache() (TenantCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("tenant cache using in-memory store")
		return NewInMemoryTenantCache(f.redisConfig.TTL), nil
	}

	redisCache, err := NewRedisTenantCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.redisConfig.TTL, f.logger)
	if err == nil {
		f.logger.Info("tenant cache using Redis",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("failed to create Redis tenant cache: %w", err)
	}

	f.logger.Warn("Redis unavailable, tenant cache falling back to in-memory store",
		zap.Error(err))
	return NewInMemoryTenantCache(f.redisConfig.TTL), nil
}
