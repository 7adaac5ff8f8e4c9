// Package memory provides in-memory repository implementations backing the
// development mode and the application-level tests. Transactions are
// serialized by a single store lock and rolled back by snapshot restore,
// which trades throughput for exact transactional semantics.
package memory

import (
	"context"
	"sync"

	appinventory "github.com/commerce/backoffice/internal/application/inventory"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/partner"
	"github.com/google/uuid"
)

// Store holds all in-memory tables behind one lock
type Store struct {
	mu          sync.Mutex
	tenants     map[uuid.UUID]identity.Tenant
	memberships map[uuid.UUID]identity.Membership
	products    map[uuid.UUID]catalog.Product
	variants    map[uuid.UUID]catalog.ProductVariant
	categories  map[uuid.UUID]catalog.Category
	orders      map[uuid.UUID]order.Order
	adjustments []inventory.InventoryAdjustment
	activities  []activity.Entry
	customers   map[uuid.UUID]partner.Customer
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		tenants:     make(map[uuid.UUID]identity.Tenant),
		memberships: make(map[uuid.UUID]identity.Membership),
		products:    make(map[uuid.UUID]catalog.Product),
		variants:    make(map[uuid.UUID]catalog.ProductVariant),
		categories:  make(map[uuid.UUID]catalog.Category),
		orders:      make(map[uuid.UUID]order.Order),
		customers:   make(map[uuid.UUID]partner.Customer),
	}
}

// snapshot copies every table for rollback
func (s *Store) snapshot() *Store {
	snap := NewStore()
	for k, v := range s.tenants {
		snap.tenants[k] = v
	}
	for k, v := range s.memberships {
		m := v
		m.Permissions = append([]identity.PermissionKey(nil), v.Permissions...)
		snap.memberships[k] = m
	}
	for k, v := range s.products {
		p := v
		p.Variants = append([]catalog.ProductVariant(nil), v.Variants...)
		snap.products[k] = p
	}
	for k, v := range s.variants {
		snap.variants[k] = v
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.orders {
		o := v
		o.Items = append([]order.OrderItem(nil), v.Items...)
		snap.orders[k] = o
	}
	snap.adjustments = append([]inventory.InventoryAdjustment(nil), s.adjustments...)
	snap.activities = append([]activity.Entry(nil), s.activities...)
	for k, v := range s.customers {
		snap.customers[k] = v
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	s.tenants = snap.tenants
	s.memberships = snap.memberships
	s.products = snap.products
	s.variants = snap.variants
	s.categories = snap.categories
	s.orders = snap.orders
	s.adjustments = snap.adjustments
	s.activities = snap.activities
	s.customers = snap.customers
}

// TransactionScope runs functions under the store lock and restores a
// snapshot when the function fails, so a failed batch leaves no trace.
type TransactionScope struct {
	store *Store
	repos *repoSet
}

// NewTransactionScope creates a transaction scope over a store
func NewTransactionScope(store *Store) *TransactionScope {
	return &TransactionScope{
		store: store,
		repos: &repoSet{store: store},
	}
}

// Execute runs fn atomically against the store
func (s *TransactionScope) Execute(_ context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	snap := s.store.snapshot()
	if err := fn(s.repos); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

// repoSet serves the repositories of one transaction. The store lock is
// already held by Execute, so the repo methods access tables directly.
type repoSet struct {
	store *Store
}

func (r *repoSet) Variants() catalog.VariantRepository {
	return &VariantRepository{store: r.store, locked: true}
}

func (r *repoSet) Orders() order.Repository {
	return &OrderRepository{store: r.store, locked: true}
}

func (r *repoSet) Adjustments() inventory.AdjustmentRepository {
	return &AdjustmentRepository{store: r.store, locked: true}
}

func (r *repoSet) Activities() activity.Repository {
	return &ActivityRepository{store: r.store, locked: true}
}

func (r *repoSet) Customers() partner.CustomerRepository {
	return &CustomerRepository{store: r.store, locked: true}
}

var _ appinventory.TransactionScope = (*TransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*repoSet)(nil)
