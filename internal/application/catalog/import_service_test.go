package catalog_test

import (
	"context"
	"testing"

	catalogapp "github.com/commerce/backoffice/internal/application/catalog"
	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportFixture(t *testing.T) (*memory.Store, *catalogapp.ImportService, identity.Actor) {
	t.Helper()

	store := memory.NewStore()
	gate := identityapp.NewPermissionService(memory.NewMembershipRepository(store))
	service := catalogapp.NewImportService(
		memory.NewProductRepository(store),
		memory.NewActivityRepository(store),
		gate,
	)

	tenantID := uuid.New()
	userID := uuid.New()
	membership, err := identity.NewMembership(tenantID, userID, identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, memory.NewMembershipRepository(store).Save(context.Background(), membership))

	return store, service, identity.Actor{UserID: userID, TenantID: tenantID, Role: identity.RoleAdmin}
}

func TestImportService_BulkImportProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("bad rows are skipped, good rows land", func(t *testing.T) {
		store, service, actor := newImportFixture(t)

		rows := []catalogapp.ProductRow{
			{Name: "Espresso Beans", Slug: "espresso-beans", SKU: "ESP-250", Price: "12.00", Stock: 30},
			{Name: "Filter Paper", Price: "3.50", Stock: 100},
			{Name: "Broken Price", Slug: "broken-price", Price: "abc", Stock: 5},
			{Name: "Drip Kettle", Slug: "drip-kettle", SKU: "KTL-01", Price: "45.00", Stock: 8},
			{Name: "Negative Stock", Slug: "negative-stock", Price: "1.00", Stock: -2},
		}

		result, err := service.BulkImportProducts(ctx, actor, rows)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Success)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Equal(t, "Broken Price", result.Errors[0].Name)
		assert.Equal(t, 5, result.Errors[1].Row)

		products := memory.NewProductRepository(store)

		// slug derived from the name when missing
		imported, err := products.FindBySlug(ctx, actor.TenantID, "filter-paper")
		require.NoError(t, err)
		require.Len(t, imported.Variants, 1)
		// SKU falls back to the uppercased slug
		assert.Equal(t, "FILTER-PAPER", imported.Variants[0].SKU)
		assert.Equal(t, int64(350), imported.Variants[0].Price)
		assert.Equal(t, int64(100), imported.Variants[0].Stock)

		page, err := memory.NewActivityRepository(store).List(ctx, actor.TenantID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, activity.EntryTypeProductImported, page.Items[0].Type)
	})

	t.Run("duplicate slug fails the later row only", func(t *testing.T) {
		_, service, actor := newImportFixture(t)

		rows := []catalogapp.ProductRow{
			{Name: "Espresso Beans", Slug: "espresso-beans", Price: "12.00", Stock: 30},
			{Name: "Espresso Beans Again", Slug: "espresso-beans", Price: "13.00", Stock: 10},
		}

		result, err := service.BulkImportProducts(ctx, actor, rows)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 2, result.Errors[0].Row)
		assert.Contains(t, result.Errors[0].Error, "already exists")
	})

	t.Run("requires the import permission", func(t *testing.T) {
		store, service, actor := newImportFixture(t)

		staffID := uuid.New()
		membership, err := identity.NewMembership(actor.TenantID, staffID, identity.RoleStaff)
		require.NoError(t, err)
		require.NoError(t, memory.NewMembershipRepository(store).Save(ctx, membership))
		staff := identity.Actor{UserID: staffID, TenantID: actor.TenantID, Role: identity.RoleStaff}

		_, err = service.BulkImportProducts(ctx, staff, []catalogapp.ProductRow{
			{Name: "Espresso Beans", Slug: "espresso-beans", Price: "12.00", Stock: 30},
		})
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})
}
