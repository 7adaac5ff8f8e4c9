package catalog

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository manages product persistence, always tenant-scoped
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	SaveWithLock(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Product, error)
	ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Product], error)
	ListByCategory(ctx context.Context, tenantID, categoryID uuid.UUID, filter shared.Filter) (shared.Paginated[*Product], error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, filter shared.Filter) (shared.Paginated[*Product], error)
}

// VariantRepository manages variant rows directly. The ledger uses
// FindForUpdate to serialize concurrent stock movements on the same variant.
type VariantRepository interface {
	Save(ctx context.Context, variant *ProductVariant) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductVariant, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductVariant, error)
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
	// FindForUpdate loads the given variants inside the current transaction
	// with row locks held until commit. Implementations must lock in
	// ascending ID order regardless of input order.
	FindForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*ProductVariant, error)
	UpdateStock(ctx context.Context, variant *ProductVariant) error
}

// CategoryRepository manages category persistence, always tenant-scoped
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Category, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Category, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
