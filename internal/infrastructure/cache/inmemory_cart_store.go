package cache

import (
	"context"
	"sync"
	"time"

	"github.com/commerce/backoffice/internal/application/store"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryCartStore keeps carts in process memory with lazy TTL expiry.
// Suitable for single-instance deployments and tests.
type InMemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]inMemoryCartEntry
	ttl   time.Duration
}

type inMemoryCartEntry struct {
	cart      store.Cart
	expiresAt time.Time
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryCartStore{
		carts: make(map[string]inMemoryCartEntry),
		ttl:   ttl,
	}
}

func cartKey(tenantID uuid.UUID, token string) string {
	return tenantID.String() + ":" + token
}

// Get loads a cart by token
func (s *InMemoryCartStore) Get(_ context.Context, tenantID uuid.UUID, token string) (*store.Cart, error) {
	s.mu.RLock()
	entry, ok := s.carts[cartKey(tenantID, token)]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, shared.ErrNotFound
	}

	cart := entry.cart
	cart.Items = append([]store.CartItem(nil), entry.cart.Items...)
	return &cart, nil
}

// Save writes a cart and refreshes its TTL
func (s *InMemoryCartStore) Save(_ context.Context, cart *store.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cart
	stored.Items = append([]store.CartItem(nil), cart.Items...)
	s.carts[cartKey(cart.TenantID, cart.Token)] = inMemoryCartEntry{
		cart:      stored,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes a cart
func (s *InMemoryCartStore) Delete(_ context.Context, tenantID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartKey(tenantID, token))
	return nil
}

// Sweep removes expired carts. Called by the scheduler.
func (s *InMemoryCartStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range s.carts {
		if now.After(entry.expiresAt) {
			delete(s.carts, key)
			removed++
		}
	}
	return removed
}

var _ store.CartStore = (*InMemoryCartStore)(nil)
