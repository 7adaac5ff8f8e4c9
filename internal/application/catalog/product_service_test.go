package catalog_test

import (
	"context"
	"testing"

	catalogapp "github.com/commerce/backoffice/internal/application/catalog"
	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	store    *memory.Store
	service  *catalogapp.ProductService
	tenantID uuid.UUID
	admin    identity.Actor
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	store := memory.NewStore()
	gate := identityapp.NewPermissionService(memory.NewMembershipRepository(store))

	f := &catalogFixture{
		store: store,
		service: catalogapp.NewProductService(
			memory.NewProductRepository(store),
			memory.NewCategoryRepository(store),
			memory.NewActivityRepository(store),
			gate,
		),
		tenantID: uuid.New(),
	}

	userID := uuid.New()
	membership, err := identity.NewMembership(f.tenantID, userID, identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, memory.NewMembershipRepository(store).Save(context.Background(), membership))
	f.admin = identity.Actor{UserID: userID, TenantID: f.tenantID, Role: identity.RoleAdmin}

	return f
}

func (f *catalogFixture) createProduct(t *testing.T, name, slug string, variants ...catalogapp.CreateVariantRequest) *catalogapp.ProductResponse {
	t.Helper()

	resp, err := f.service.Create(context.Background(), f.admin, catalogapp.CreateProductRequest{
		Name:     name,
		Slug:     slug,
		Variants: variants,
	})
	require.NoError(t, err)
	return resp
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with variants, first is default", func(t *testing.T) {
		f := newCatalogFixture(t)

		resp := f.createProduct(t, "Espresso Beans", "espresso-beans",
			catalogapp.CreateVariantRequest{SKU: "ESP-250", Name: "250g bag", Price: 1200, Stock: 30},
			catalogapp.CreateVariantRequest{SKU: "ESP-1000", Name: "1kg bag", Price: 3900, Stock: 12},
		)

		assert.True(t, resp.IsActive)
		require.Len(t, resp.Variants, 2)
		assert.True(t, resp.Variants[0].IsDefault)
		assert.False(t, resp.Variants[1].IsDefault)
		assert.Equal(t, "ESP-250", resp.Variants[0].SKU)
	})

	t.Run("duplicate slug within the tenant is rejected", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.createProduct(t, "Espresso Beans", "espresso-beans")

		_, err := f.service.Create(ctx, f.admin, catalogapp.CreateProductRequest{
			Name: "Other Beans",
			Slug: "espresso-beans",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		f := newCatalogFixture(t)
		categoryID := uuid.New()

		_, err := f.service.Create(ctx, f.admin, catalogapp.CreateProductRequest{
			Name:       "Espresso Beans",
			Slug:       "espresso-beans",
			CategoryID: &categoryID,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("requires the product create permission", func(t *testing.T) {
		f := newCatalogFixture(t)
		staffID := uuid.New()
		membership, err := identity.NewMembership(f.tenantID, staffID, identity.RoleStaff)
		require.NoError(t, err)
		require.NoError(t, memory.NewMembershipRepository(f.store).Save(ctx, membership))
		staff := identity.Actor{UserID: staffID, TenantID: f.tenantID, Role: identity.RoleStaff}

		_, err = f.service.Create(ctx, staff, catalogapp.CreateProductRequest{Name: "X", Slug: "x"})
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})
}

func TestProductService_Variants(t *testing.T) {
	ctx := context.Background()

	t.Run("update variant keeps stock untouched", func(t *testing.T) {
		f := newCatalogFixture(t)
		created := f.createProduct(t, "Espresso Beans", "espresso-beans",
			catalogapp.CreateVariantRequest{SKU: "ESP-250", Name: "250g bag", Price: 1200, Stock: 30})
		variantID := created.Variants[0].ID

		resp, err := f.service.UpdateVariant(ctx, f.admin, created.ID, variantID, catalogapp.UpdateVariantRequest{
			Name:  "250g bag (new roast)",
			Price: 1350,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1350), resp.Variants[0].Price)

		stored, err := memory.NewVariantRepository(f.store).FindByID(ctx, f.tenantID, variantID)
		require.NoError(t, err)
		assert.Equal(t, int64(30), stored.Stock)
	})

	t.Run("removing the default variant moves the flag", func(t *testing.T) {
		f := newCatalogFixture(t)
		created := f.createProduct(t, "Espresso Beans", "espresso-beans",
			catalogapp.CreateVariantRequest{SKU: "ESP-250", Name: "250g bag", Price: 1200, Stock: 30},
			catalogapp.CreateVariantRequest{SKU: "ESP-1000", Name: "1kg bag", Price: 3900, Stock: 12})

		resp, err := f.service.RemoveVariant(ctx, f.admin, created.ID, created.Variants[0].ID)
		require.NoError(t, err)

		require.Len(t, resp.Variants, 2)
		assert.True(t, resp.Variants[0].Removed)
		assert.False(t, resp.Variants[0].IsDefault)
		assert.True(t, resp.Variants[1].IsDefault)
	})

	t.Run("set default variant", func(t *testing.T) {
		f := newCatalogFixture(t)
		created := f.createProduct(t, "Espresso Beans", "espresso-beans",
			catalogapp.CreateVariantRequest{SKU: "ESP-250", Name: "250g bag", Price: 1200, Stock: 30},
			catalogapp.CreateVariantRequest{SKU: "ESP-1000", Name: "1kg bag", Price: 3900, Stock: 12})

		resp, err := f.service.SetDefaultVariant(ctx, f.admin, created.ID, created.Variants[1].ID)
		require.NoError(t, err)
		assert.False(t, resp.Variants[0].IsDefault)
		assert.True(t, resp.Variants[1].IsDefault)
	})
}

func TestProductService_Queries(t *testing.T) {
	ctx := context.Background()

	f := newCatalogFixture(t)
	category, err := f.service.CreateCategory(ctx, f.admin, "Coffee", "coffee", nil)
	require.NoError(t, err)

	beans := f.createProduct(t, "Espresso Beans", "espresso-beans",
		catalogapp.CreateVariantRequest{SKU: "ESP-250", Name: "250g bag", Price: 1200, Stock: 30})
	grinder := f.createProduct(t, "Burr Grinder", "burr-grinder",
		catalogapp.CreateVariantRequest{SKU: "GRD-01", Name: "Grinder", Price: 8900, Stock: 5})

	_, err = f.service.Update(ctx, f.admin, beans.ID, catalogapp.UpdateProductRequest{
		Name:       "Espresso Beans",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, f.admin, grinder.ID, catalogapp.UpdateProductRequest{
		Name:       "Burr Grinder",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	t.Run("get by slug", func(t *testing.T) {
		resp, err := f.service.GetBySlug(ctx, f.tenantID, "espresso-beans")
		require.NoError(t, err)
		assert.Equal(t, beans.ID, resp.ID)
	})

	t.Run("search matches variant SKU", func(t *testing.T) {
		page, err := f.service.Search(ctx, f.tenantID, "grd", shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, grinder.ID, page.Items[0].ID)
	})

	t.Run("list by category", func(t *testing.T) {
		page, err := f.service.ListByCategory(ctx, f.tenantID, category.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})

	t.Run("related excludes the product itself", func(t *testing.T) {
		related, err := f.service.Related(ctx, f.tenantID, "espresso-beans", 4)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, grinder.ID, related[0].ID)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		_, err := f.service.GetBySlug(ctx, uuid.New(), "espresso-beans")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
