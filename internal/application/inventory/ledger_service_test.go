package inventory_test

import (
	"context"
	"sync"
	"testing"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	inventoryapp "github.com/commerce/backoffice/internal/application/inventory"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/infrastructure/event"
	"github.com/commerce/backoffice/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	store    *memory.Store
	scope    *memory.TransactionScope
	ledger   *inventoryapp.LedgerService
	tenantID uuid.UUID
	admin    identity.Actor
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := memory.NewStore()
	scope := memory.NewTransactionScope(store)
	gate := identityapp.NewPermissionService(memory.NewMembershipRepository(store))

	f := &ledgerFixture{
		store:    store,
		scope:    scope,
		ledger:   inventoryapp.NewLedgerService(scope, gate),
		tenantID: uuid.New(),
	}
	f.admin = f.newActor(t, identity.RoleAdmin)
	return f
}

func (f *ledgerFixture) newActor(t *testing.T, role identity.Role, permissions ...identity.PermissionKey) identity.Actor {
	t.Helper()

	userID := uuid.New()
	membership, err := identity.NewMembership(f.tenantID, userID, role)
	require.NoError(t, err)
	if len(permissions) > 0 {
		require.NoError(t, membership.SetPermissions(permissions))
	}
	require.NoError(t, memory.NewMembershipRepository(f.store).Save(context.Background(), membership))

	return identity.Actor{UserID: userID, TenantID: f.tenantID, Role: role}
}

func (f *ledgerFixture) seedVariant(t *testing.T, slug, sku string, price, stock int64) *catalog.ProductVariant {
	t.Helper()

	product, err := catalog.NewProduct(f.tenantID, "Test Product "+sku, slug)
	require.NoError(t, err)
	variant, err := product.AddVariant(sku, "Variant "+sku, price, stock)
	require.NoError(t, err)
	require.NoError(t, memory.NewProductRepository(f.store).Save(context.Background(), product))

	out := *variant
	return &out
}

func (f *ledgerFixture) stockOf(t *testing.T, variantID uuid.UUID) int64 {
	t.Helper()

	v, err := memory.NewVariantRepository(f.store).FindByID(context.Background(), f.tenantID, variantID)
	require.NoError(t, err)
	return v.Stock
}

func (f *ledgerFixture) adjustmentsOf(t *testing.T, variantID uuid.UUID) []*inventory.InventoryAdjustment {
	t.Helper()

	page, err := memory.NewAdjustmentRepository(f.store).ListByVariant(context.Background(), f.tenantID, variantID, shared.DefaultFilter())
	require.NoError(t, err)
	return page.Items
}

func (f *ledgerFixture) activities(t *testing.T) []*activity.Entry {
	t.Helper()

	page, err := memory.NewActivityRepository(f.store).List(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	return page.Items
}

func TestLedgerService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("applies signed delta and records movement and audit entry", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

		newStock, err := f.ledger.Adjust(ctx, f.admin, v.ID, 15, inventory.AdjustmentTypeReceived, "Supplier delivery")
		require.NoError(t, err)
		assert.Equal(t, int64(25), newStock)
		assert.Equal(t, int64(25), f.stockOf(t, v.ID))

		adjustments := f.adjustmentsOf(t, v.ID)
		require.Len(t, adjustments, 1)
		assert.Equal(t, int64(15), adjustments[0].Delta)
		assert.Equal(t, inventory.AdjustmentTypeReceived, adjustments[0].Type)
		assert.Equal(t, int64(25), adjustments[0].StockAfter)
		assert.Equal(t, "Supplier delivery", adjustments[0].Reason)

		entries := f.activities(t)
		require.Len(t, entries, 1)
		assert.Equal(t, activity.EntryTypeStockAdjusted, entries[0].Type)
	})

	t.Run("rejects a delta that would drive stock negative", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 3)

		_, err := f.ledger.Adjust(ctx, f.admin, v.ID, -5, inventory.AdjustmentTypeAdjusted, "Damage write-off")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		assert.Equal(t, int64(3), f.stockOf(t, v.ID))
		assert.Empty(t, f.adjustmentsOf(t, v.ID))
		assert.Empty(t, f.activities(t))
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 3)

		_, err := f.ledger.Adjust(ctx, f.admin, v.ID, 0, inventory.AdjustmentTypeAdjusted, "noop")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DELTA", domainErr.Code)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.ledger.Adjust(ctx, f.admin, uuid.New(), 5, inventory.AdjustmentTypeReceived, "restock")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("requires the adjust permission", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		staff := f.newActor(t, identity.RoleStaff)

		_, err := f.ledger.Adjust(ctx, staff, v.ID, 5, inventory.AdjustmentTypeReceived, "restock")
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		assert.Equal(t, int64(10), f.stockOf(t, v.ID))
	})

	t.Run("granular grant is enough", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		staff := f.newActor(t, identity.RoleStaff, identity.PermInventoryAdjust)

		newStock, err := f.ledger.Adjust(ctx, staff, v.ID, -2, inventory.AdjustmentTypeAdjusted, "stocktake")
		require.NoError(t, err)
		assert.Equal(t, int64(8), newStock)
	})
}

func TestLedgerService_ReserveAndCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock and snapshots prices", func(t *testing.T) {
		f := newLedgerFixture(t)
		v1 := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		v2 := f.seedVariant(t, "tea", "TEA-001", 900, 4)

		ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
		reserved, err := f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
			{VariantID: v1.ID, Quantity: 3},
			{VariantID: v2.ID, Quantity: 4},
		})
		require.NoError(t, err)
		require.Len(t, reserved, 2)

		byID := make(map[uuid.UUID]inventoryapp.ReservedItem)
		for _, r := range reserved {
			byID[r.VariantID] = r
		}
		assert.Equal(t, int64(1500), byID[v1.ID].UnitPrice)
		assert.Equal(t, int64(7), byID[v1.ID].StockAfter)
		assert.Equal(t, int64(0), byID[v2.ID].StockAfter)

		assert.Equal(t, int64(7), f.stockOf(t, v1.ID))
		assert.Equal(t, int64(0), f.stockOf(t, v2.ID))

		adjustments := f.adjustmentsOf(t, v1.ID)
		require.Len(t, adjustments, 1)
		assert.Equal(t, inventory.AdjustmentTypeSold, adjustments[0].Type)
		assert.Equal(t, int64(-3), adjustments[0].Delta)
		require.NotNil(t, adjustments[0].OrderID)
		assert.Equal(t, ref.OrderID, *adjustments[0].OrderID)

		entries := f.activities(t)
		require.Len(t, entries, 1)
		assert.Equal(t, activity.EntryTypeStockReserved, entries[0].Type)
		assert.Equal(t, ref.OrderID, entries[0].SubjectID)
	})

	t.Run("insufficient stock on one line rolls back the whole batch", func(t *testing.T) {
		f := newLedgerFixture(t)
		v1 := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		v2 := f.seedVariant(t, "tea", "TEA-001", 900, 2)

		ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
		_, err := f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
			{VariantID: v1.ID, Quantity: 3},
			{VariantID: v2.ID, Quantity: 5},
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		var stockErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, v2.ID, stockErr.VariantID)
		assert.Equal(t, int64(5), stockErr.Requested)
		assert.Equal(t, int64(2), stockErr.Available)

		assert.Equal(t, int64(10), f.stockOf(t, v1.ID))
		assert.Equal(t, int64(2), f.stockOf(t, v2.ID))
		assert.Empty(t, f.adjustmentsOf(t, v1.ID))
		assert.Empty(t, f.activities(t))
	})

	t.Run("duplicate variant lines are merged", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

		ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
		reserved, err := f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
			{VariantID: v.ID, Quantity: 2},
			{VariantID: v.ID, Quantity: 3},
		})
		require.NoError(t, err)
		require.Len(t, reserved, 1)
		assert.Equal(t, int64(5), reserved[0].Quantity)
		assert.Equal(t, int64(5), f.stockOf(t, v.ID))
	})

	t.Run("removed variant cannot be reserved", func(t *testing.T) {
		f := newLedgerFixture(t)

		product, err := catalog.NewProduct(f.tenantID, "Test Product", "coffee")
		require.NoError(t, err)
		variant, err := product.AddVariant("COF-001", "Removed Variant", 1500, 10)
		require.NoError(t, err)
		variantID := variant.ID
		require.NoError(t, product.RemoveVariant(variantID))
		require.NoError(t, memory.NewProductRepository(f.store).Save(ctx, product))

		ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
		_, err = f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
			{VariantID: variantID, Quantity: 1},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("concurrent reservations cannot oversell", func(t *testing.T) {
		f := newLedgerFixture(t)
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 5)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
				_, err := f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
					{VariantID: v.ID, Quantity: 3},
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var succeeded, failed int
		for err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, shared.ErrInsufficientStock)
				failed++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, failed)
		assert.Equal(t, int64(2), f.stockOf(t, v.ID))
		assert.Len(t, f.adjustmentsOf(t, v.ID), 1)
	})
}

func TestLedgerService_LowStockMonitor(t *testing.T) {
	ctx := context.Background()

	f := newLedgerFixture(t)
	v := f.seedVariant(t, "coffee", "COF-001", 1500, 8)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	monitor := inventoryapp.NewLowStockMonitor(zap.NewNop())
	bus.Subscribe(monitor)
	f.ledger.SetEventPublisher(bus)
	f.ledger.SetLowStockThreshold(5)

	ref := inventoryapp.ReservationRef{OrderID: uuid.New(), OrderNumber: "SO-20260829-0001"}
	_, err := f.ledger.ReserveAndCommit(ctx, f.admin, ref, []inventoryapp.ItemRequest{
		{VariantID: v.ID, Quantity: 4},
	})
	require.NoError(t, err)

	alerts := monitor.Alerts(f.tenantID)
	require.Len(t, alerts, 1)
	assert.Equal(t, v.ID, alerts[0].VariantID)
	assert.Equal(t, "COF-001", alerts[0].SKU)
	assert.Equal(t, int64(4), alerts[0].Stock)

	// restocking above the threshold clears the alert
	_, err = f.ledger.Adjust(ctx, f.admin, v.ID, 10, inventory.AdjustmentTypeReceived, "Supplier delivery")
	require.NoError(t, err)
	assert.Empty(t, monitor.Alerts(f.tenantID))
}

func TestLedgerService_History(t *testing.T) {
	ctx := context.Background()

	f := newLedgerFixture(t)
	v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

	_, err := f.ledger.Adjust(ctx, f.admin, v.ID, 5, inventory.AdjustmentTypeReceived, "first")
	require.NoError(t, err)
	_, err = f.ledger.Adjust(ctx, f.admin, v.ID, -3, inventory.AdjustmentTypeAdjusted, "second")
	require.NoError(t, err)

	page, err := f.ledger.History(ctx, f.tenantID, v.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Total)

	stock, err := f.ledger.StockOf(ctx, f.tenantID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stock)
}
