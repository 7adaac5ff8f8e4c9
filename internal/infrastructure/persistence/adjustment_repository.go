package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentRepository implements AdjustmentRepository using GORM.
// Adjustments are append-only; there is no update path.
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// Save appends an adjustment record
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *inventory.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

// FindByID finds an adjustment by ID within a tenant
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryAdjustment, error) {
	var adj inventory.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&adj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adj, nil
}

// ListByVariant returns the movement history of a variant, newest first
func (r *GormAdjustmentRepository) ListByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	query := r.db.WithContext(ctx).Model(&inventory.InventoryAdjustment{}).
		Where("tenant_id = ? AND variant_id = ?", tenantID, variantID)
	return r.paginate(query, filter)
}

// ListByOrder returns the adjustments written for an order's reservation
func (r *GormAdjustmentRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*inventory.InventoryAdjustment, error) {
	var adjustments []*inventory.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// List returns adjustments for a tenant
func (r *GormAdjustmentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	query := r.db.WithContext(ctx).Model(&inventory.InventoryAdjustment{}).
		Where("tenant_id = ?", tenantID)
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "variant_id":
			query = query.Where("variant_id = ?", value)
		}
	}
	return r.paginate(query, filter)
}

func (r *GormAdjustmentRepository) paginate(query *gorm.DB, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.InventoryAdjustment]{}, err
	}

	var adjustments []*inventory.InventoryAdjustment
	query = applySort(query, filter, AdjustmentSortFields)
	query = applyPagination(query, filter)
	if err := query.Find(&adjustments).Error; err != nil {
		return shared.Paginated[*inventory.InventoryAdjustment]{}, err
	}
	return shared.NewPaginated(adjustments, total, filter.Page, filter.PageSize), nil
}

var _ inventory.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
