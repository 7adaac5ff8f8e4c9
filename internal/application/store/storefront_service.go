package store

import (
	"context"
	"strings"

	catalogapp "github.com/commerce/backoffice/internal/application/catalog"
	orderapp "github.com/commerce/backoffice/internal/application/order"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// StorefrontService backs the public storefront gateway. It is a privileged
// internal caller acting on behalf of anonymous shoppers: reads are plain
// tenant-scoped queries, and checkout funnels into the same order workflow
// the back office uses, under the system actor.
type StorefrontService struct {
	tenants  identity.TenantRepository
	products *catalogapp.ProductService
	orders   *orderapp.WorkflowService
	carts    CartStore
}

// NewStorefrontService creates a new StorefrontService
func NewStorefrontService(tenants identity.TenantRepository, products *catalogapp.ProductService, orders *orderapp.WorkflowService, carts CartStore) *StorefrontService {
	return &StorefrontService{
		tenants:  tenants,
		products: products,
		orders:   orders,
		carts:    carts,
	}
}

// ResolveTenant maps a storefront slug to a tenant. Inactive tenants are
// invisible to the storefront.
func (s *StorefrontService) ResolveTenant(ctx context.Context, slug string) (uuid.UUID, error) {
	tenant, err := s.tenants.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return uuid.Nil, shared.ErrNotFound
	}
	if !tenant.IsActive {
		return uuid.Nil, shared.ErrNotFound
	}
	return tenant.ID, nil
}

// Products lists active products for browsing
func (s *StorefrontService) Products(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[catalogapp.ProductResponse], error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["is_active"] = true
	return s.products.List(ctx, tenantID, filter)
}

// SearchProducts runs a free-text product search
func (s *StorefrontService) SearchProducts(ctx context.Context, tenantID uuid.UUID, query string, filter shared.Filter) (shared.Paginated[catalogapp.ProductResponse], error) {
	return s.products.Search(ctx, tenantID, query, filter)
}

// ProductBySlug returns one product page
func (s *StorefrontService) ProductBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*catalogapp.ProductResponse, error) {
	product, err := s.products.GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

// RelatedProducts returns other products from the same category
func (s *StorefrontService) RelatedProducts(ctx context.Context, tenantID uuid.UUID, slug string) ([]catalogapp.ProductResponse, error) {
	return s.products.Related(ctx, tenantID, slug, 4)
}

// Categories lists the tenant's categories
func (s *StorefrontService) Categories(ctx context.Context, tenantID uuid.UUID) ([]catalogapp.CategoryResponse, error) {
	return s.products.ListCategories(ctx, tenantID)
}

// CategoryBySlug returns one category
func (s *StorefrontService) CategoryBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*catalogapp.CategoryResponse, error) {
	return s.products.GetCategoryBySlug(ctx, tenantID, slug)
}

// CategoryProducts lists products in a category
func (s *StorefrontService) CategoryProducts(ctx context.Context, tenantID uuid.UUID, slug string, filter shared.Filter) (shared.Paginated[catalogapp.ProductResponse], error) {
	category, err := s.products.GetCategoryBySlug(ctx, tenantID, slug)
	if err != nil {
		return shared.Paginated[catalogapp.ProductResponse]{}, err
	}
	return s.products.ListByCategory(ctx, tenantID, category.ID, filter)
}

// OrderLookup returns an order by number when the supplied email matches the
// snapshot taken at creation. No authentication beyond that.
func (s *StorefrontService) OrderLookup(ctx context.Context, tenantID uuid.UUID, orderNumber, email string) (*orderapp.OrderResponse, error) {
	resp, err := s.orders.GetByNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), resp.Customer.Email) {
		return nil, shared.ErrNotFound
	}
	return resp, nil
}

// GetCart returns the shopper's cart, or an empty one when the token is
// unknown or missing
func (s *StorefrontService) GetCart(ctx context.Context, tenantID uuid.UUID, token string) (*Cart, error) {
	if token == "" {
		return NewCart(tenantID), nil
	}
	cart, err := s.carts.Get(ctx, tenantID, token)
	if err != nil {
		return NewCart(tenantID), nil
	}
	return cart, nil
}

// AddCartItem adds a variant to the cart, creating the cart on first write
func (s *StorefrontService) AddCartItem(ctx context.Context, tenantID uuid.UUID, token string, variantID uuid.UUID, quantity int64) (*Cart, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	cart, err := s.GetCart(ctx, tenantID, token)
	if err != nil {
		return nil, err
	}
	cart.Add(variantID, quantity)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCartItem changes one line's quantity; zero removes the line
func (s *StorefrontService) UpdateCartItem(ctx context.Context, tenantID uuid.UUID, token string, itemID uuid.UUID, quantity int64) (*Cart, error) {
	cart, err := s.carts.Get(ctx, tenantID, token)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	if !cart.UpdateQuantity(itemID, quantity) {
		return nil, shared.ErrNotFound
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveCartItem deletes one line
func (s *StorefrontService) RemoveCartItem(ctx context.Context, tenantID uuid.UUID, token string, itemID uuid.UUID) (*Cart, error) {
	return s.UpdateCartItem(ctx, tenantID, token, itemID, 0)
}

// Checkout turns the cart into an order through the same all-or-nothing
// reservation path the back office uses. On success the cart is deleted.
func (s *StorefrontService) Checkout(ctx context.Context, tenantID uuid.UUID, token string, customer orderapp.CustomerInfoRequest) (*orderapp.OrderResponse, error) {
	cart, err := s.carts.Get(ctx, tenantID, token)
	if err != nil || cart.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart is empty")
	}

	req := orderapp.CreateOrderRequest{Customer: customer}
	for _, item := range cart.Items {
		req.Items = append(req.Items, orderapp.OrderItemRequest{VariantID: item.VariantID, Quantity: item.Quantity})
	}

	resp, err := s.orders.Create(ctx, identity.SystemActor(tenantID), req)
	if err != nil {
		return nil, err
	}

	_ = s.carts.Delete(ctx, tenantID, token)
	return resp, nil
}
