package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backoffice/internal/application/store"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore persists storefront carts as TTL'd JSON documents in Redis.
// Suitable for distributed deployments where multiple instances serve the
// same storefront.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCartStore creates a Redis-backed cart store
func NewRedisCartStore(cfg RedisConfig, ttl time.Duration) (*RedisCartStore, error) {
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

	return NewRedisCartStoreWithClient(client, ttl), nil
}

// NewRedisCartStoreWithClient creates a store over an existing client
func NewRedisCartStoreWithClient(client *redis.Client, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCartStore{
		client:    client,
		keyPrefix: "store:cart:",
		ttl:       ttl,
	}
}

func (s *RedisCartStore) key(tenantID uuid.UUID, token string) string {
	return s.keyPrefix + tenantID.String() + ":" + token
}

// Get loads a cart by token
func (s *RedisCartStore) Get(ctx context.Context, tenantID uuid.UUID, token string) (*store.Cart, error) {
	data, err := s.client.Get(ctx, s.key(tenantID, token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart store.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

// Save writes a cart and refreshes its TTL
func (s *RedisCartStore) Save(ctx context.Context, cart *store.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(cart.TenantID, cart.Token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes a cart
func (s *RedisCartStore) Delete(ctx context.Context, tenantID uuid.UUID, token string) error {
	return s.client.Del(ctx, s.key(tenantID, token)).Err()
}

// Close closes the Redis client
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}

var _ store.CartStore = (*RedisCartStore)(nil)
