package order_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	inventoryapp "github.com/commerce/backoffice/internal/application/inventory"
	orderapp "github.com/commerce/backoffice/internal/application/order"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workflowFixture struct {
	store    *memory.Store
	ledger   *inventoryapp.LedgerService
	workflow *orderapp.WorkflowService
	tenantID uuid.UUID
	admin    identity.Actor
}

func newWorkflowFixture(t *testing.T, policy order.TransitionPolicy) *workflowFixture {
	t.Helper()

	store := memory.NewStore()
	scope := memory.NewTransactionScope(store)
	gate := identityapp.NewPermissionService(memory.NewMembershipRepository(store))
	ledger := inventoryapp.NewLedgerService(scope, gate)

	f := &workflowFixture{
		store:    store,
		ledger:   ledger,
		workflow: orderapp.NewWorkflowService(scope, ledger, gate, policy),
		tenantID: uuid.New(),
	}
	f.admin = f.newActor(t, identity.RoleAdmin)
	return f
}

func (f *workflowFixture) newActor(t *testing.T, role identity.Role, permissions ...identity.PermissionKey) identity.Actor {
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

func (f *workflowFixture) seedVariant(t *testing.T, slug, sku string, price, stock int64) *catalog.ProductVariant {
	t.Helper()

	product, err := catalog.NewProduct(f.tenantID, "Test Product "+sku, slug)
	require.NoError(t, err)
	variant, err := product.AddVariant(sku, "Variant "+sku, price, stock)
	require.NoError(t, err)
	require.NoError(t, memory.NewProductRepository(f.store).Save(context.Background(), product))

	out := *variant
	return &out
}

func (f *workflowFixture) stockOf(t *testing.T, variantID uuid.UUID) int64 {
	t.Helper()

	v, err := memory.NewVariantRepository(f.store).FindByID(context.Background(), f.tenantID, variantID)
	require.NoError(t, err)
	return v.Stock
}

func (f *workflowFixture) createOrder(t *testing.T, variantID uuid.UUID, quantity int64) *orderapp.OrderResponse {
	t.Helper()

	resp, err := f.workflow.Create(context.Background(), f.admin, orderapp.CreateOrderRequest{
		Items:    []orderapp.OrderItemRequest{{VariantID: variantID, Quantity: quantity}},
		Customer: orderapp.CustomerInfoRequest{Name: "Jane Doe", Email: "jane@example.com"},
	})
	require.NoError(t, err)
	return resp
}

func TestWorkflowService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves stock, snapshots prices and folds customer counters", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

		resp, err := f.workflow.Create(ctx, f.admin, orderapp.CreateOrderRequest{
			Items: []orderapp.OrderItemRequest{{VariantID: v.ID, Quantity: 3}},
			Customer: orderapp.CustomerInfoRequest{
				Name:  "Jane Doe",
				Email: "jane@example.com",
				Phone: "555-0100",
			},
		})
		require.NoError(t, err)

		expectedNumber := fmt.Sprintf("SO-%s-0001", time.Now().Format("20060102"))
		assert.Equal(t, expectedNumber, resp.OrderNumber)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "unpaid", resp.PaymentStatus)
		assert.Equal(t, int64(4500), resp.TotalAmount)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "COF-001", resp.Items[0].SKU)
		assert.Equal(t, int64(1500), resp.Items[0].UnitPrice)
		assert.Equal(t, int64(4500), resp.Items[0].Subtotal)

		assert.Equal(t, int64(7), f.stockOf(t, v.ID))

		customer, err := memory.NewCustomerRepository(f.store).FindByEmail(ctx, f.tenantID, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), customer.TotalOrders)
		assert.Equal(t, int64(4500), customer.TotalSpend)
		require.NotNil(t, customer.LastSeenAt)

		page, err := memory.NewActivityRepository(f.store).List(ctx, f.tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		types := make([]activity.EntryType, 0, len(page.Items))
		for _, e := range page.Items {
			types = append(types, e.Type)
		}
		assert.Contains(t, types, activity.EntryTypeStockReserved)
		assert.Contains(t, types, activity.EntryTypeOrderCreated)
	})

	t.Run("repeat buyer keeps one customer record", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

		first := f.createOrder(t, v.ID, 2)
		second := f.createOrder(t, v.ID, 1)

		assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
		assert.Equal(t, fmt.Sprintf("SO-%s-0002", time.Now().Format("20060102")), second.OrderNumber)

		customer, err := memory.NewCustomerRepository(f.store).FindByEmail(ctx, f.tenantID, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), customer.TotalOrders)
		assert.Equal(t, int64(4500), customer.TotalSpend)
	})

	t.Run("insufficient stock leaves no order behind", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 2)

		_, err := f.workflow.Create(ctx, f.admin, orderapp.CreateOrderRequest{
			Items:    []orderapp.OrderItemRequest{{VariantID: v.ID, Quantity: 5}},
			Customer: orderapp.CustomerInfoRequest{Name: "Jane Doe", Email: "jane@example.com"},
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		assert.Equal(t, int64(2), f.stockOf(t, v.ID))

		page, err := f.workflow.List(ctx, f.tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, page.Items)

		_, err = memory.NewCustomerRepository(f.store).FindByEmail(ctx, f.tenantID, "jane@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid customer snapshot", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)

		_, err := f.workflow.Create(ctx, f.admin, orderapp.CreateOrderRequest{
			Items:    []orderapp.OrderItemRequest{{VariantID: v.ID, Quantity: 1}},
			Customer: orderapp.CustomerInfoRequest{Name: "Jane Doe", Email: "not-an-email"},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CUSTOMER", domainErr.Code)
		assert.Equal(t, int64(10), f.stockOf(t, v.ID))
	})

	t.Run("requires the order create permission", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		staff := f.newActor(t, identity.RoleStaff)

		_, err := f.workflow.Create(ctx, staff, orderapp.CreateOrderRequest{
			Items:    []orderapp.OrderItemRequest{{VariantID: v.ID, Quantity: 1}},
			Customer: orderapp.CustomerInfoRequest{Name: "Jane Doe", Email: "jane@example.com"},
		})
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})
}

func TestWorkflowService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("paid flips the payment status", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 2)

		resp, err := f.workflow.UpdateStatus(ctx, f.admin, created.ID, order.OrderStatusPaid, false)
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		assert.Equal(t, "paid", resp.PaymentStatus)
	})

	t.Run("illegal edge is rejected", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 2)

		_, err := f.workflow.UpdateStatus(ctx, f.admin, created.ID, order.OrderStatusShipped, false)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	t.Run("early refund is policy gated", func(t *testing.T) {
		strict := newWorkflowFixture(t, order.TransitionPolicy{})
		v := strict.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := strict.createOrder(t, v.ID, 2)
		_, err := strict.workflow.UpdateStatus(ctx, strict.admin, created.ID, order.OrderStatusPaid, false)
		require.NoError(t, err)
		_, err = strict.workflow.UpdateStatus(ctx, strict.admin, created.ID, order.OrderStatusRefunded, false)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)

		lenient := newWorkflowFixture(t, order.TransitionPolicy{AllowEarlyRefund: true})
		v = lenient.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created = lenient.createOrder(t, v.ID, 2)
		_, err = lenient.workflow.UpdateStatus(ctx, lenient.admin, created.ID, order.OrderStatusPaid, false)
		require.NoError(t, err)
		resp, err := lenient.workflow.UpdateStatus(ctx, lenient.admin, created.ID, order.OrderStatusRefunded, false)
		require.NoError(t, err)
		assert.Equal(t, "refunded", resp.PaymentStatus)
	})

	t.Run("cancel with restock returns every unit", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 4)
		require.Equal(t, int64(6), f.stockOf(t, v.ID))

		resp, err := f.workflow.UpdateStatus(ctx, f.admin, created.ID, order.OrderStatusCancelled, true)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, int64(10), f.stockOf(t, v.ID))

		page, err := memory.NewAdjustmentRepository(f.store).ListByVariant(ctx, f.tenantID, v.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 2)

		var restocked bool
		for _, adj := range page.Items {
			if adj.Type == inventory.AdjustmentTypeRestocked {
				restocked = true
				assert.Equal(t, int64(4), adj.Delta)
				require.NotNil(t, adj.OrderID)
				assert.Equal(t, created.ID, *adj.OrderID)
			}
		}
		assert.True(t, restocked)
	})

	t.Run("cancel without restock keeps stock reserved", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 4)

		_, err := f.workflow.UpdateStatus(ctx, f.admin, created.ID, order.OrderStatusCancelled, false)
		require.NoError(t, err)
		assert.Equal(t, int64(6), f.stockOf(t, v.ID))
	})

	t.Run("restock needs its own permission", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 4)

		manager := f.newActor(t, identity.RoleManager, identity.PermOrderUpdateStatus)
		_, err := f.workflow.UpdateStatus(ctx, manager, created.ID, order.OrderStatusCancelled, true)
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		assert.Equal(t, int64(6), f.stockOf(t, v.ID))
	})

	t.Run("restock applies only to cancel and refund", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 2)

		_, err := f.workflow.UpdateStatus(ctx, f.admin, created.ID, order.OrderStatusPaid, true)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}

func TestWorkflowService_Repeat(t *testing.T) {
	ctx := context.Background()

	t.Run("re-validates stock and re-snapshots prices", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
		created := f.createOrder(t, v.ID, 3)

		// price change between the orders must not leak into the old one
		variants := memory.NewVariantRepository(f.store)
		stored, err := variants.FindByID(ctx, f.tenantID, v.ID)
		require.NoError(t, err)
		stored.Price = 2000
		require.NoError(t, variants.Save(ctx, stored))

		repeated, err := f.workflow.Repeat(ctx, f.admin, created.ID)
		require.NoError(t, err)

		assert.NotEqual(t, created.ID, repeated.ID)
		assert.NotEqual(t, created.OrderNumber, repeated.OrderNumber)
		assert.Equal(t, int64(6000), repeated.TotalAmount)
		assert.Equal(t, "jane@example.com", repeated.Customer.Email)
		assert.Equal(t, int64(4), f.stockOf(t, v.ID))

		original, err := f.workflow.GetByID(ctx, f.tenantID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4500), original.TotalAmount)
	})

	t.Run("repeat fails when stock ran out", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})
		v := f.seedVariant(t, "coffee", "COF-001", 1500, 5)
		created := f.createOrder(t, v.ID, 4)

		_, err := f.workflow.Repeat(ctx, f.admin, created.ID)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newWorkflowFixture(t, order.TransitionPolicy{})

		_, err := f.workflow.Repeat(ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestWorkflowService_Queries(t *testing.T) {
	ctx := context.Background()

	f := newWorkflowFixture(t, order.TransitionPolicy{})
	v := f.seedVariant(t, "coffee", "COF-001", 1500, 10)
	created := f.createOrder(t, v.ID, 2)

	byNumber, err := f.workflow.GetByNumber(ctx, f.tenantID, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	// order numbers are tenant scoped
	_, err = f.workflow.GetByNumber(ctx, uuid.New(), created.OrderNumber)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err := f.workflow.List(ctx, f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
}
