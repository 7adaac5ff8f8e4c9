package catalog

import (
	"context"
	"fmt"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles catalog maintenance. Stock levels are read-only
// here; every stock change goes through the ledger.
type ProductService struct {
	products       catalog.ProductRepository
	categories     catalog.CategoryRepository
	activities     activity.Repository
	gate           identityapp.Gate
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryRepository, activities activity.Repository, gate identityapp.Gate) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		activities: activities,
		gate:       gate,
	}
}

// SetEventPublisher sets the event publisher for read-model subscriptions
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a product with its initial variants
func (s *ProductService) Create(ctx context.Context, actor identity.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductCreate); err != nil {
		return nil, err
	}

	exists, err := s.products.ExistsBySlug(ctx, actor.TenantID, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	product, err := catalog.NewProduct(actor.TenantID, req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, actor.TenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	for _, v := range req.Variants {
		if _, err := product.AddVariant(v.SKU, v.Name, v.Price, v.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, product.ID, activity.EntryTypeProductCreated,
		fmt.Sprintf("Product %s created with %d variants", product.Name, len(product.Variants)),
		activity.Metadata{"slug": product.Slug})
	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update updates a product's basic information
func (s *ProductService) Update(ctx context.Context, actor identity.Actor, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductUpdate); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	product.SetCategory(req.CategoryID)

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, product.ID, activity.EntryTypeProductUpdated,
		fmt.Sprintf("Product %s updated", product.Name), nil)
	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// AddVariant adds a variant to an existing product
func (s *ProductService) AddVariant(ctx context.Context, actor identity.Actor, productID uuid.UUID, req CreateVariantRequest) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductUpdate); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}

	if _, err := product.AddVariant(req.SKU, req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateVariant updates a variant's name and price
func (s *ProductService) UpdateVariant(ctx context.Context, actor identity.Actor, productID, variantID uuid.UUID, req UpdateVariantRequest) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductUpdate); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.UpdateVariant(variantID, req.Name, req.Price); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// RemoveVariant soft-removes a variant
func (s *ProductService) RemoveVariant(ctx context.Context, actor identity.Actor, productID, variantID uuid.UUID) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductUpdate); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.RemoveVariant(variantID); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// SetDefaultVariant marks one variant as the product default
func (s *ProductService) SetDefaultVariant(ctx context.Context, actor identity.Actor, productID, variantID uuid.UUID) (*ProductResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductUpdate); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.SetDefaultVariant(variantID); err != nil {
		return nil, err
	}

	if err := s.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySlug returns one product by its storefront slug
func (s *ProductService) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of the tenant's products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[ProductResponse], error) {
	page, err := s.products.List(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return toProductPage(page), nil
}

// Search returns products matching a free-text query
func (s *ProductService) Search(ctx context.Context, tenantID uuid.UUID, query string, filter shared.Filter) (shared.Paginated[ProductResponse], error) {
	page, err := s.products.Search(ctx, tenantID, query, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return toProductPage(page), nil
}

// ListByCategory returns products in a category
func (s *ProductService) ListByCategory(ctx context.Context, tenantID, categoryID uuid.UUID, filter shared.Filter) (shared.Paginated[ProductResponse], error) {
	page, err := s.products.ListByCategory(ctx, tenantID, categoryID, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return toProductPage(page), nil
}

// Related returns other active products in the same category
func (s *ProductService) Related(ctx context.Context, tenantID uuid.UUID, slug string, limit int) ([]ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []ProductResponse{}, nil
	}

	filter := shared.DefaultFilter()
	filter.PageSize = limit + 1
	page, err := s.products.ListByCategory(ctx, tenantID, *product.CategoryID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]ProductResponse, 0, limit)
	for _, p := range page.Items {
		if p.ID == product.ID || !p.IsActive {
			continue
		}
		out = append(out, ToProductResponse(p))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CreateCategory creates a category
func (s *ProductService) CreateCategory(ctx context.Context, actor identity.Actor, name, slug string, parentID *uuid.UUID) (*CategoryResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermCategoryManage); err != nil {
		return nil, err
	}

	category, err := catalog.NewCategory(actor.TenantID, name, slug)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.categories.FindByID(ctx, actor.TenantID, *parentID); err != nil {
			return nil, err
		}
		if err := category.SetParent(parentID); err != nil {
			return nil, err
		}
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories returns all categories of a tenant
func (s *ProductService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categories.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, ToCategoryResponse(c))
	}
	return out, nil
}

// GetCategoryBySlug returns one category by its storefront slug
func (s *ProductService) GetCategoryBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*CategoryResponse, error) {
	category, err := s.categories.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

func toProductPage(page shared.Paginated[*catalog.Product]) shared.Paginated[ProductResponse] {
	items := make([]ProductResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, ToProductResponse(p))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
}

func (s *ProductService) recordActivity(ctx context.Context, actor identity.Actor, subjectID uuid.UUID, entryType activity.EntryType, description string, metadata activity.Metadata) {
	entry, err := activity.NewEntry(actor.TenantID, subjectID, actor.UserID, entryType, description, metadata)
	if err != nil {
		return
	}
	_ = s.activities.Save(ctx, entry)
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, product.GetDomainEvents()...)
	product.ClearDomainEvents()
}
