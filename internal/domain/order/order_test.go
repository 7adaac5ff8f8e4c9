package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomer() CustomerInfo {
	return CustomerInfo{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Phone:   "+44 20 7946 0000",
		Address: "12 St James's Square, London",
	}
}

func testSnapshots() []ItemSnapshot {
	return []ItemSnapshot{
		{VariantID: uuid.New(), VariantName: "Blue Mug", SKU: "MUG-BLUE", Quantity: 2, UnitPrice: 1250},
		{VariantID: uuid.New(), VariantName: "Red Mug", SKU: "MUG-RED", Quantity: 1, UnitPrice: 1500},
	}
}

func createTestOrder(t *testing.T) *Order {
	o, err := NewOrder(uuid.New(), "SO-20260829-0001", testCustomer(), testSnapshots())
	require.NoError(t, err)
	return o
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusPending, true},
		{OrderStatusPaid, true},
		{OrderStatusProcessing, true},
		{OrderStatusShipped, true},
		{OrderStatusDelivered, true},
		{OrderStatusCancelled, true},
		{OrderStatusRefunded, true},
		{OrderStatus("draft"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	policy := TransitionPolicy{}

	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// From pending
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusRefunded, false},
		// From paid
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusRefunded, false},
		// From processing
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPaid, false},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		// From shipped
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusShipped, OrderStatusRefunded, false},
		// From delivered (terminal apart from refund)
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		// From cancelled (terminal)
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusCancelled, OrderStatusRefunded, false},
		// From refunded (terminal)
		{OrderStatusRefunded, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to, policy))
		})
	}
}

func TestOrderStatus_EarlyRefundPolicy(t *testing.T) {
	t.Run("paid to refunded blocked by default", func(t *testing.T) {
		assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusRefunded, TransitionPolicy{}))
	})

	t.Run("paid to refunded allowed with early refund policy", func(t *testing.T) {
		policy := TransitionPolicy{AllowEarlyRefund: true}
		assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusRefunded, policy))
	})

	t.Run("policy does not open other refund edges", func(t *testing.T) {
		policy := TransitionPolicy{AllowEarlyRefund: true}
		assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusRefunded, policy))
		assert.False(t, OrderStatusProcessing.CanTransitionTo(OrderStatusRefunded, policy))
		assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusRefunded, policy))
	})
}

// ============================================
// NewOrder Tests
// ============================================

func TestNewOrder(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates order with valid inputs", func(t *testing.T) {
		o, err := NewOrder(tenantID, "SO-20260829-0001", testCustomer(), testSnapshots())
		require.NoError(t, err)
		require.NotNil(t, o)

		assert.Equal(t, tenantID, o.TenantID)
		assert.Equal(t, "SO-20260829-0001", o.OrderNumber)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)
		assert.Len(t, o.Items, 2)
		assert.Equal(t, int64(2*1250+1500), o.TotalAmount)
		assert.Len(t, o.GetDomainEvents(), 1)
	})

	t.Run("total is the sum of unit price snapshots", func(t *testing.T) {
		snapshots := []ItemSnapshot{
			{VariantID: uuid.New(), VariantName: "A", SKU: "A-1", Quantity: 3, UnitPrice: 999},
			{VariantID: uuid.New(), VariantName: "B", SKU: "B-1", Quantity: 5, UnitPrice: 200},
		}
		o, err := NewOrder(tenantID, "SO-20260829-0002", testCustomer(), snapshots)
		require.NoError(t, err)
		assert.Equal(t, int64(3*999+5*200), o.TotalAmount)
		assert.Equal(t, int64(8), o.TotalQuantity())
	})

	t.Run("fails with empty order number", func(t *testing.T) {
		_, err := NewOrder(tenantID, "", testCustomer(), testSnapshots())
		assert.Error(t, err)
	})

	t.Run("fails with no items", func(t *testing.T) {
		_, err := NewOrder(tenantID, "SO-20260829-0003", testCustomer(), nil)
		assert.Error(t, err)
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		snapshots := []ItemSnapshot{{VariantID: uuid.New(), VariantName: "A", SKU: "A-1", Quantity: 0, UnitPrice: 100}}
		_, err := NewOrder(tenantID, "SO-20260829-0004", testCustomer(), snapshots)
		assert.Error(t, err)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		snapshots := []ItemSnapshot{{VariantID: uuid.New(), VariantName: "A", SKU: "A-1", Quantity: 1, UnitPrice: -1}}
		_, err := NewOrder(tenantID, "SO-20260829-0005", testCustomer(), snapshots)
		assert.Error(t, err)
	})

	t.Run("fails with invalid customer", func(t *testing.T) {
		customer := CustomerInfo{Name: "", Email: "not-an-email"}
		_, err := NewOrder(tenantID, "SO-20260829-0006", customer, testSnapshots())
		assert.Error(t, err)
	})
}

// ============================================
// Transition Tests
// ============================================

func TestOrder_TransitionTo(t *testing.T) {
	policy := TransitionPolicy{}

	t.Run("paid transition flips payment status", func(t *testing.T) {
		o := createTestOrder(t)
		require.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)

		err := o.TransitionTo(OrderStatusPaid, policy)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusPaid, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("full happy path to delivered", func(t *testing.T) {
		o := createTestOrder(t)
		for _, status := range []OrderStatus{OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
			require.NoError(t, o.TransitionTo(status, policy))
		}
		assert.Equal(t, OrderStatusDelivered, o.Status)
		assert.True(t, o.Status.IsTerminal())
	})

	t.Run("refund after delivery marks payment refunded", func(t *testing.T) {
		o := createTestOrder(t)
		for _, status := range []OrderStatus{OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusRefunded} {
			require.NoError(t, o.TransitionTo(status, policy))
		}
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
	})

	t.Run("illegal edge is rejected and order unchanged", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.TransitionTo(OrderStatusShipped, policy)
		require.Error(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)
	})

	t.Run("cancelled order rejects everything", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.TransitionTo(OrderStatusCancelled, policy))
		for _, status := range []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusRefunded} {
			assert.Error(t, o.TransitionTo(status, policy))
		}
	})

	t.Run("total never recomputes on transition", func(t *testing.T) {
		o := createTestOrder(t)
		total := o.TotalAmount
		require.NoError(t, o.TransitionTo(OrderStatusPaid, policy))
		o.Items[0].UnitPrice = 99999
		require.NoError(t, o.TransitionTo(OrderStatusProcessing, policy))
		assert.Equal(t, total, o.TotalAmount)
	})

	t.Run("transition emits an event and bumps the version", func(t *testing.T) {
		o := createTestOrder(t)
		o.ClearDomainEvents()
		v := o.GetVersion()

		require.NoError(t, o.TransitionTo(OrderStatusPaid, policy))
		assert.Equal(t, v+1, o.GetVersion())
		require.Len(t, o.GetDomainEvents(), 1)
		event, ok := o.GetDomainEvents()[0].(*OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "pending", event.PreviousStatus)
		assert.Equal(t, "paid", event.NewStatus)
	})
}

func TestOrder_TotalMoney(t *testing.T) {
	o := createTestOrder(t)
	assert.Equal(t, "40.00", o.TotalMoney().Display())
}
