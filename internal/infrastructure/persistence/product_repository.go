package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save creates or updates a product together with its variants.
// Variant stock is never written here; stock belongs to the ledger.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Save(product).Error; err != nil {
			return err
		}
		for i := range product.Variants {
			v := &product.Variants[i]
			var existing catalog.ProductVariant
			err := tx.Where("tenant_id = ? AND id = ?", v.TenantID, v.ID).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(v).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				result := tx.Model(&catalog.ProductVariant{}).
					Where("tenant_id = ? AND id = ?", v.TenantID, v.ID).
					Updates(map[string]interface{}{
						"sku":        v.SKU,
						"name":       v.Name,
						"price":      v.Price,
						"is_default": v.IsDefault,
						"removed":    v.Removed,
						"updated_at": v.UpdatedAt,
					})
				if result.Error != nil {
					return result.Error
				}
				// Keep the in-memory copy consistent with what the ledger holds
				v.Stock = existing.Stock
				v.Version = existing.Version
			}
		}
		return nil
	})
}

// SaveWithLock saves a product. Catalog writes go through Save; the database
// transaction already serializes concurrent writers on the product row.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.Save(ctx, product)
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug finds a product by slug within a tenant
func (r *GormProductRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ExistsBySlug checks if a product with the slug exists within a tenant
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns products for a tenant
func (r *GormProductRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	return r.paginate(query, filter)
}

// ListByCategory returns products in a category
func (r *GormProductRepository) ListByCategory(ctx context.Context, tenantID, categoryID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID)
	query = r.applyFilters(query, filter)
	return r.paginate(query, filter)
}

// Search matches product name, slug, variant name or SKU
func (r *GormProductRepository) Search(ctx context.Context, tenantID uuid.UUID, search string, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	pattern := "%" + search + "%"
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("tenant_id = ?", tenantID).
		Where(
			"name ILIKE ? OR slug ILIKE ? OR id IN (?)",
			pattern, pattern,
			r.db.Model(&catalog.ProductVariant{}).
				Select("product_id").
				Where("tenant_id = ? AND removed = false AND (name ILIKE ? OR sku ILIKE ?)", tenantID, pattern, pattern),
		)
	query = r.applyFilters(query, filter)
	return r.paginate(query, filter)
}

func (r *GormProductRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "category_id":
			query = query.Where("category_id = ?", value)
		}
	}
	return query
}

func (r *GormProductRepository) paginate(query *gorm.DB, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}

	var products []*catalog.Product
	query = applySort(query, filter, ProductSortFields)
	query = applyPagination(query, filter)
	if err := query.Preload("Variants").Find(&products).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}
	return shared.NewPaginated(products, total, filter.Page, filter.PageSize), nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
