package memory

import (
	"context"
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/partner"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository is the in-memory order.Repository
type OrderRepository struct {
	store  *Store
	locked bool
}

// NewOrderRepository creates a standalone order repository
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Save stores an order with its items
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	defer r.store.acquire(r.locked)()
	stored := *o
	stored.Items = append([]order.OrderItem(nil), o.Items...)
	r.store.orders[o.ID] = stored
	return nil
}

// SaveWithLock rejects writes against a stale version
func (r *OrderRepository) SaveWithLock(_ context.Context, o *order.Order) error {
	defer r.store.acquire(r.locked)()
	existing, ok := r.store.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.GetVersion() != o.GetVersion()-1 {
		return shared.ErrConcurrencyConflict
	}
	stored := *o
	stored.Items = append([]order.OrderItem(nil), o.Items...)
	r.store.orders[o.ID] = stored
	return nil
}

// FindByID returns one order
func (r *OrderRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	defer r.store.acquire(r.locked)()
	o, ok := r.store.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := o
	out.Items = append([]order.OrderItem(nil), o.Items...)
	return &out, nil
}

// FindByNumber returns one order by order number
func (r *OrderRepository) FindByNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	defer r.store.acquire(r.locked)()
	for _, o := range r.store.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			out := o
			out.Items = append([]order.OrderItem(nil), o.Items...)
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// List returns a page of the tenant's orders, newest first
func (r *OrderRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*order.Order], error) {
	defer r.store.acquire(r.locked)()
	return paginate(r.collect(tenantID, nil), filter), nil
}

// ListByCustomer returns a customer's orders
func (r *OrderRepository) ListByCustomer(_ context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[*order.Order], error) {
	defer r.store.acquire(r.locked)()
	match := func(o order.Order) bool {
		return o.CustomerID != nil && *o.CustomerID == customerID
	}
	return paginate(r.collect(tenantID, match), filter), nil
}

// CountCreatedOn counts the tenant's orders whose number carries the date
// prefix, used for order number sequencing
func (r *OrderRepository) CountCreatedOn(_ context.Context, tenantID uuid.UUID, datePrefix string) (int64, error) {
	defer r.store.acquire(r.locked)()
	var count int64
	prefix := "SO-" + datePrefix + "-"
	for _, o := range r.store.orders {
		if o.TenantID == tenantID && strings.HasPrefix(o.OrderNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (r *OrderRepository) collect(tenantID uuid.UUID, match func(order.Order) bool) []*order.Order {
	out := make([]*order.Order, 0)
	for _, o := range r.store.orders {
		if o.TenantID != tenantID {
			continue
		}
		if match != nil && !match(o) {
			continue
		}
		copied := o
		copied.Items = append([]order.OrderItem(nil), o.Items...)
		out = append(out, &copied)
	}
	newestFirst(out, func(o *order.Order) int64 { return o.CreatedAt.UnixNano() })
	return out
}

var _ order.Repository = (*OrderRepository)(nil)

// AdjustmentRepository is the in-memory inventory.AdjustmentRepository
type AdjustmentRepository struct {
	store  *Store
	locked bool
}

// NewAdjustmentRepository creates a standalone adjustment repository
func NewAdjustmentRepository(store *Store) *AdjustmentRepository {
	return &AdjustmentRepository{store: store}
}

// Save appends an adjustment record
func (r *AdjustmentRepository) Save(_ context.Context, adjustment *inventory.InventoryAdjustment) error {
	defer r.store.acquire(r.locked)()
	r.store.adjustments = append(r.store.adjustments, *adjustment)
	return nil
}

// FindByID returns one adjustment
func (r *AdjustmentRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.InventoryAdjustment, error) {
	defer r.store.acquire(r.locked)()
	for _, a := range r.store.adjustments {
		if a.ID == id && a.TenantID == tenantID {
			out := a
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ListByVariant returns a variant's movement history, newest first
func (r *AdjustmentRepository) ListByVariant(_ context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	defer r.store.acquire(r.locked)()
	match := func(a inventory.InventoryAdjustment) bool { return a.VariantID == variantID }
	return paginate(r.collect(tenantID, match), filter), nil
}

// ListByOrder returns every movement caused by one order
func (r *AdjustmentRepository) ListByOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]*inventory.InventoryAdjustment, error) {
	defer r.store.acquire(r.locked)()
	match := func(a inventory.InventoryAdjustment) bool { return a.OrderID != nil && *a.OrderID == orderID }
	return r.collect(tenantID, match), nil
}

// List returns a page of the tenant's movements
func (r *AdjustmentRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	defer r.store.acquire(r.locked)()
	return paginate(r.collect(tenantID, nil), filter), nil
}

func (r *AdjustmentRepository) collect(tenantID uuid.UUID, match func(inventory.InventoryAdjustment) bool) []*inventory.InventoryAdjustment {
	out := make([]*inventory.InventoryAdjustment, 0)
	for _, a := range r.store.adjustments {
		if a.TenantID != tenantID {
			continue
		}
		if match != nil && !match(a) {
			continue
		}
		copied := a
		out = append(out, &copied)
	}
	newestFirst(out, func(a *inventory.InventoryAdjustment) int64 { return a.CreatedAt.UnixNano() })
	return out
}

var _ inventory.AdjustmentRepository = (*AdjustmentRepository)(nil)

// ActivityRepository is the in-memory activity.Repository
type ActivityRepository struct {
	store  *Store
	locked bool
}

// NewActivityRepository creates a standalone activity repository
func NewActivityRepository(store *Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Save appends an audit entry
func (r *ActivityRepository) Save(_ context.Context, entry *activity.Entry) error {
	defer r.store.acquire(r.locked)()
	r.store.activities = append(r.store.activities, *entry)
	return nil
}

// FindByID returns one entry
func (r *ActivityRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*activity.Entry, error) {
	defer r.store.acquire(r.locked)()
	for _, e := range r.store.activities {
		if e.ID == id && e.TenantID == tenantID {
			out := e
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ListBySubject returns the audit trail of one entity, newest first
func (r *ActivityRepository) ListBySubject(_ context.Context, tenantID, subjectID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	defer r.store.acquire(r.locked)()
	match := func(e activity.Entry) bool { return e.SubjectID == subjectID }
	return paginate(r.collect(tenantID, match), filter), nil
}

// List returns a page of the tenant's audit trail
func (r *ActivityRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	defer r.store.acquire(r.locked)()
	return paginate(r.collect(tenantID, nil), filter), nil
}

// DeleteOlderThan removes entries created before the cutoff
func (r *ActivityRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	defer r.store.acquire(r.locked)()
	kept := r.store.activities[:0]
	var removed int64
	for _, e := range r.store.activities {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.store.activities = kept
	return removed, nil
}

func (r *ActivityRepository) collect(tenantID uuid.UUID, match func(activity.Entry) bool) []*activity.Entry {
	out := make([]*activity.Entry, 0)
	for _, e := range r.store.activities {
		if e.TenantID != tenantID {
			continue
		}
		if match != nil && !match(e) {
			continue
		}
		copied := e
		out = append(out, &copied)
	}
	newestFirst(out, func(e *activity.Entry) int64 { return e.CreatedAt.UnixNano() })
	return out
}

var _ activity.Repository = (*ActivityRepository)(nil)

// CustomerRepository is the in-memory partner.CustomerRepository
type CustomerRepository struct {
	store  *Store
	locked bool
}

// NewCustomerRepository creates a standalone customer repository
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

// Save stores a customer
func (r *CustomerRepository) Save(_ context.Context, customer *partner.Customer) error {
	defer r.store.acquire(r.locked)()
	r.store.customers[customer.ID] = *customer
	return nil
}

// SaveWithLock rejects writes against a stale version
func (r *CustomerRepository) SaveWithLock(_ context.Context, customer *partner.Customer) error {
	defer r.store.acquire(r.locked)()
	existing, ok := r.store.customers[customer.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.GetVersion() != customer.GetVersion()-1 {
		return shared.ErrConcurrencyConflict
	}
	r.store.customers[customer.ID] = *customer
	return nil
}

// FindByID returns one customer
func (r *CustomerRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	defer r.store.acquire(r.locked)()
	c, ok := r.store.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := c
	return &out, nil
}

// FindByEmail returns one customer by normalized email
func (r *CustomerRepository) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*partner.Customer, error) {
	defer r.store.acquire(r.locked)()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.store.customers {
		if c.TenantID == tenantID && c.Email == email {
			out := c
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// List returns a page of the tenant's customers
func (r *CustomerRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*partner.Customer], error) {
	defer r.store.acquire(r.locked)()
	out := make([]*partner.Customer, 0)
	for _, c := range r.store.customers {
		if c.TenantID != tenantID {
			continue
		}
		copied := c
		out = append(out, &copied)
	}
	newestFirst(out, func(c *partner.Customer) int64 { return c.CreatedAt.UnixNano() })
	return paginate(out, filter), nil
}

var _ partner.CustomerRepository = (*CustomerRepository)(nil)
