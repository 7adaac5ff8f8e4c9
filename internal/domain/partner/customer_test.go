package partner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer and normalizes email", func(t *testing.T) {
		c, err := NewCustomer(uuid.New(), " Ada Lovelace ", "ADA@Example.com", "", "")
		require.NoError(t, err)

		assert.Equal(t, "Ada Lovelace", c.Name)
		assert.Equal(t, "ada@example.com", c.Email)
		assert.Zero(t, c.TotalOrders)
		assert.Zero(t, c.TotalSpend)
		assert.Nil(t, c.LastSeenAt)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), "Ada", "not-an-email", "", "")
		assert.Error(t, err)
	})
}

func TestCustomer_ApplyOrder(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "Ada", "ada@example.com", "", "")
	require.NoError(t, err)

	first := time.Now().Add(-time.Hour)
	c.ApplyOrder(4000, first)
	second := time.Now()
	c.ApplyOrder(1500, second)

	assert.Equal(t, int64(2), c.TotalOrders)
	assert.Equal(t, int64(5500), c.TotalSpend)
	require.NotNil(t, c.LastSeenAt)
	assert.Equal(t, second, *c.LastSeenAt)
}
