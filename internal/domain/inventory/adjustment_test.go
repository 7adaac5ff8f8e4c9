package inventory

import (
	"errors"
	"testing"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdjustment(t *testing.T) {
	tenantID := uuid.New()
	variantID := uuid.New()
	actorID := uuid.New()

	t.Run("records a movement", func(t *testing.T) {
		adj, err := NewAdjustment(tenantID, variantID, actorID, -3, AdjustmentTypeSold, "order SO-1", 7)
		require.NoError(t, err)

		assert.Equal(t, int64(-3), adj.Delta)
		assert.Equal(t, AdjustmentTypeSold, adj.Type)
		assert.Equal(t, int64(7), adj.StockAfter)
		assert.Equal(t, actorID, adj.ActorID)
		assert.Nil(t, adj.OrderID)
	})

	t.Run("links to an order", func(t *testing.T) {
		orderID := uuid.New()
		adj, err := NewAdjustment(tenantID, variantID, actorID, -1, AdjustmentTypeSold, "", 4)
		require.NoError(t, err)

		adj.ForOrder(orderID)
		require.NotNil(t, adj.OrderID)
		assert.Equal(t, orderID, *adj.OrderID)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		_, err := NewAdjustment(tenantID, variantID, actorID, 0, AdjustmentTypeAdjusted, "noop", 5)
		assert.Error(t, err)
	})

	t.Run("rejects negative resulting stock", func(t *testing.T) {
		_, err := NewAdjustment(tenantID, variantID, actorID, -10, AdjustmentTypeAdjusted, "", -5)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewAdjustment(tenantID, variantID, actorID, 1, AdjustmentType("misplaced"), "", 6)
		assert.Error(t, err)
	})
}

func TestAdjustmentType_IsValid(t *testing.T) {
	valid := []AdjustmentType{
		AdjustmentTypeReceived, AdjustmentTypeSold, AdjustmentTypeAdjusted,
		AdjustmentTypeReturned, AdjustmentTypeRestocked,
	}
	for _, at := range valid {
		assert.True(t, at.IsValid(), at)
	}
	assert.False(t, AdjustmentType("shrunk").IsValid())
}

func TestInsufficientStockError(t *testing.T) {
	variantID := uuid.New()
	err := NewInsufficientStockError(variantID, 3, 2)

	t.Run("matches the sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("exposes the detail", func(t *testing.T) {
		var insufficientErr *InsufficientStockError
		require.True(t, errors.As(error(err), &insufficientErr))
		assert.Equal(t, variantID, insufficientErr.VariantID)
		assert.Equal(t, int64(3), insufficientErr.Requested)
		assert.Equal(t, int64(2), insufficientErr.Available)
	})

	t.Run("message names the shortfall", func(t *testing.T) {
		assert.Contains(t, err.Error(), "requested 3")
		assert.Contains(t, err.Error(), "available 2")
	})
}
