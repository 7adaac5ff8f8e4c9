package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save creates an order together with its item snapshots. Two concurrent
// creates can compute the same order number; the loser hits the unique
// index on (tenant_id, order_number) and gets a retryable conflict.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError("CONFLICT", "Order number already taken, retry the request")
			}
			return err
		}
		for i := range o.Items {
			item := &o.Items[i]
			if err := tx.Where("id = ?", item.ID).
				Assign(item).
				FirstOrCreate(&order.OrderItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock updates an order with optimistic locking. The aggregate has
// already incremented its version; the write only lands if the stored row
// still carries the previous one.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND id = ? AND version = ?", o.TenantID, o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"customer_id":    o.CustomerID,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds an order by ID within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByNumber finds an order by its order number within a tenant
func (r *GormOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns orders for a tenant
func (r *GormOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*order.Order], error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	return r.paginate(query, filter)
}

// ListByCustomer returns orders linked to a customer
func (r *GormOrderRepository) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[*order.Order], error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	query = r.applyFilters(query, filter)
	return r.paginate(query, filter)
}

// CountCreatedOn counts orders whose number carries the given date prefix.
// Used to allocate the next sequence number of the day.
func (r *GormOrderRepository) CountCreatedOn(ctx context.Context, tenantID uuid.UUID, datePrefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, "SO-"+datePrefix+"-%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOrderRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_email":
			query = query.Where("customer_email = ?", value)
		}
	}
	return query
}

func (r *GormOrderRepository) paginate(query *gorm.DB, filter shared.Filter) (shared.Paginated[*order.Order], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*order.Order]{}, err
	}

	var orders []*order.Order
	query = applySort(query, filter, OrderSortFields)
	query = applyPagination(query, filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return shared.Paginated[*order.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
