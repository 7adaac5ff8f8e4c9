package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// VariantRepository is the in-memory catalog.VariantRepository
type VariantRepository struct {
	store  *Store
	locked bool
}

// NewVariantRepository creates a standalone variant repository
func NewVariantRepository(store *Store) *VariantRepository {
	return &VariantRepository{store: store}
}

// Save stores a variant row
func (r *VariantRepository) Save(_ context.Context, variant *catalog.ProductVariant) error {
	defer r.store.acquire(r.locked)()
	r.store.variants[variant.ID] = *variant
	return nil
}

// FindByID returns one variant
func (r *VariantRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.ProductVariant, error) {
	defer r.store.acquire(r.locked)()
	v, ok := r.store.variants[id]
	if !ok || v.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := v
	return &out, nil
}

// FindBySKU returns one variant by SKU
func (r *VariantRepository) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.ProductVariant, error) {
	defer r.store.acquire(r.locked)()
	sku = strings.ToUpper(sku)
	for _, v := range r.store.variants {
		if v.TenantID == tenantID && v.SKU == sku {
			out := v
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ExistsBySKU reports whether a SKU is taken within the tenant
func (r *VariantRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	_, err := r.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// FindForUpdate returns the requested variants in ascending ID order. The
// surrounding transaction holds the store lock, which stands in for the
// row locks of the SQL implementation.
func (r *VariantRepository) FindForUpdate(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*catalog.ProductVariant, error) {
	defer r.store.acquire(r.locked)()
	out := make([]*catalog.ProductVariant, 0, len(ids))
	for _, id := range ids {
		v, ok := r.store.variants[id]
		if !ok || v.TenantID != tenantID {
			continue
		}
		copy := v
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// UpdateStock writes back a variant's stock level
func (r *VariantRepository) UpdateStock(_ context.Context, variant *catalog.ProductVariant) error {
	defer r.store.acquire(r.locked)()
	stored, ok := r.store.variants[variant.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Stock = variant.Stock
	stored.Version++
	r.store.variants[variant.ID] = stored
	return nil
}

var _ catalog.VariantRepository = (*VariantRepository)(nil)

// ProductRepository is the in-memory catalog.ProductRepository
type ProductRepository struct {
	store  *Store
	locked bool
}

// NewProductRepository creates a standalone product repository
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Save stores a product and mirrors its variants into the variant table
func (r *ProductRepository) Save(_ context.Context, product *catalog.Product) error {
	defer r.store.acquire(r.locked)()
	p := *product
	p.Variants = append([]catalog.ProductVariant(nil), product.Variants...)
	r.store.products[product.ID] = p
	for _, v := range product.Variants {
		stored, ok := r.store.variants[v.ID]
		if ok {
			// stock belongs to the ledger, keep the stored level
			v.Stock = stored.Stock
			v.Version = stored.Version
		}
		r.store.variants[v.ID] = v
	}
	return nil
}

// SaveWithLock behaves like Save; the store lock already serializes writers
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.Save(ctx, product)
}

// FindByID returns one product with current variant stock folded in
func (r *ProductRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	defer r.store.acquire(r.locked)()
	p, ok := r.store.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := r.withStock(p)
	return &out, nil
}

// FindBySlug returns one product by slug
func (r *ProductRepository) FindBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*catalog.Product, error) {
	defer r.store.acquire(r.locked)()
	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.Slug == slug {
			out := r.withStock(p)
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ExistsBySlug reports whether a slug is taken within the tenant
func (r *ProductRepository) ExistsBySlug(_ context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	defer r.store.acquire(r.locked)()
	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// List returns a page of the tenant's products
func (r *ProductRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	defer r.store.acquire(r.locked)()
	return paginate(r.collect(tenantID, filter, nil), filter), nil
}

// ListByCategory returns products in one category
func (r *ProductRepository) ListByCategory(_ context.Context, tenantID, categoryID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	defer r.store.acquire(r.locked)()
	match := func(p catalog.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}
	return paginate(r.collect(tenantID, filter, match), filter), nil
}

// Search matches the query against product and variant names and SKUs
func (r *ProductRepository) Search(_ context.Context, tenantID uuid.UUID, query string, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	defer r.store.acquire(r.locked)()
	q := strings.ToLower(query)
	match := func(p catalog.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), q) {
			return true
		}
		for _, v := range p.Variants {
			if strings.Contains(strings.ToLower(v.Name), q) || strings.Contains(strings.ToLower(v.SKU), q) {
				return true
			}
		}
		return false
	}
	return paginate(r.collect(tenantID, filter, match), filter), nil
}

func (r *ProductRepository) collect(tenantID uuid.UUID, filter shared.Filter, match func(catalog.Product) bool) []*catalog.Product {
	out := make([]*catalog.Product, 0)
	activeOnly, _ := filter.Filters["is_active"].(bool)
	for _, p := range r.store.products {
		if p.TenantID != tenantID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		if match != nil && !match(p) {
			continue
		}
		copy := r.withStock(p)
		out = append(out, &copy)
	}
	newestFirst(out, func(p *catalog.Product) int64 { return p.CreatedAt.UnixNano() })
	return out
}

func (r *ProductRepository) withStock(p catalog.Product) catalog.Product {
	out := p
	out.Variants = append([]catalog.ProductVariant(nil), p.Variants...)
	for i := range out.Variants {
		if stored, ok := r.store.variants[out.Variants[i].ID]; ok {
			out.Variants[i].Stock = stored.Stock
		}
	}
	return out
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// CategoryRepository is the in-memory catalog.CategoryRepository
type CategoryRepository struct {
	store  *Store
	locked bool
}

// NewCategoryRepository creates a standalone category repository
func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

// Save stores a category
func (r *CategoryRepository) Save(_ context.Context, category *catalog.Category) error {
	defer r.store.acquire(r.locked)()
	r.store.categories[category.ID] = *category
	return nil
}

// FindByID returns one category
func (r *CategoryRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	defer r.store.acquire(r.locked)()
	c, ok := r.store.categories[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := c
	return &out, nil
}

// FindBySlug returns one category by slug
func (r *CategoryRepository) FindBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*catalog.Category, error) {
	defer r.store.acquire(r.locked)()
	for _, c := range r.store.categories {
		if c.TenantID == tenantID && c.Slug == slug {
			out := c
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// List returns all of the tenant's categories sorted by sort order
func (r *CategoryRepository) List(_ context.Context, tenantID uuid.UUID) ([]*catalog.Category, error) {
	defer r.store.acquire(r.locked)()
	out := make([]*catalog.Category, 0)
	for _, c := range r.store.categories {
		if c.TenantID == tenantID {
			copy := c
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// Delete removes a category
func (r *CategoryRepository) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	defer r.store.acquire(r.locked)()
	c, ok := r.store.categories[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.store.categories, id)
	return nil
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)
