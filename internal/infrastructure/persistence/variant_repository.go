package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// Save creates or updates a variant row
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// FindByID finds a variant by ID within a tenant
func (r *GormVariantRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindBySKU finds a variant by SKU within a tenant
func (r *GormVariantRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// ExistsBySKU checks if a variant with the SKU exists within a tenant
func (r *GormVariantRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.ProductVariant{}).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindForUpdate loads variants with row locks held until the surrounding
// transaction commits. Rows are locked in ascending ID order so two
// reservations touching the same variants cannot deadlock.
func (r *GormVariantRepository) FindForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*catalog.ProductVariant, error) {
	if len(ids) == 0 {
		return []*catalog.ProductVariant{}, nil
	}

	var variants []*catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// UpdateStock writes the new stock level for a variant
func (r *GormVariantRepository) UpdateStock(ctx context.Context, variant *catalog.ProductVariant) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.ProductVariant{}).
		Where("tenant_id = ? AND id = ?", variant.TenantID, variant.ID).
		Updates(map[string]interface{}{
			"stock":      variant.Stock,
			"version":    gorm.Expr("version + 1"),
			"updated_at": variant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
