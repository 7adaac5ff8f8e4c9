package cache

import (
	"fmt"
	"time"

	"github.com/commerce/backoffice/internal/application/store"
	"github.com/commerce/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CartStoreFactory creates cart stores based on configuration
type CartStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartStoreFactoryOption is a functional option for configuring the factory
type CartStoreFactoryOption func(*CartStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.logger = logger
	}
}

// WithCartTTL sets how long carts live without activity
func WithCartTTL(ttl time.Duration) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartStoreFactory creates a new factory
func NewCartStoreFactory(cfg config.RedisConfig, opts ...CartStoreFactoryOption) *CartStoreFactory {
	f := &CartStoreFactory{
		redisConfig:           cfg,
		ttl:                   24 * time.Hour,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed cart store
func (f *CartStoreFactory) CreateRedisStore() (store.CartStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cartStore, err := NewRedisCartStore(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cart store: %w", err)
	}

	return cartStore, nil
}

// CreateInMemoryStore creates an in-memory cart store.
// Carts do not survive restarts and are not shared across instances.
func (f *CartStoreFactory) CreateInMemoryStore() store.CartStore {
	return NewInMemoryCartStore(f.ttl)
}

// CreateStore creates a cart store, preferring Redis and falling back to
// in-memory when Redis is unavailable and fallback is allowed.
func (f *CartStoreFactory) CreateStore() (store.CartStore, error) {
	cartStore, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis cart store")
		return cartStore, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for carts but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cart store. "+
		"Carts will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
