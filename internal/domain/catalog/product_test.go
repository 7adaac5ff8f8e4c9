package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T) *Product {
	p, err := NewProduct(uuid.New(), "Enamel Mug", "enamel-mug")
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		tenantID := uuid.New()
		p, err := NewProduct(tenantID, "Enamel Mug", "enamel-mug")
		require.NoError(t, err)

		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, "Enamel Mug", p.Name)
		assert.Equal(t, "enamel-mug", p.Slug)
		assert.True(t, p.IsActive)
		assert.Empty(t, p.Variants)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "", "slug")
		assert.Error(t, err)
	})

	t.Run("fails with invalid slug", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Mug", "Not A Slug")
		assert.Error(t, err)
	})
}

func TestProduct_AddVariant(t *testing.T) {
	t.Run("first variant becomes default", func(t *testing.T) {
		p := createTestProduct(t)

		v1, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)
		assert.True(t, v1.IsDefault)

		v2, err := p.AddVariant("MUG-RED", "Red", 1250, 5)
		require.NoError(t, err)
		assert.False(t, v2.IsDefault)

		require.NotNil(t, p.DefaultVariant())
		assert.Equal(t, "MUG-BLUE", p.DefaultVariant().SKU)
	})

	t.Run("normalizes SKU to upper case", func(t *testing.T) {
		p := createTestProduct(t)
		v, err := p.AddVariant("mug-blue", "Blue", 1250, 10)
		require.NoError(t, err)
		assert.Equal(t, "MUG-BLUE", v.SKU)
	})

	t.Run("rejects duplicate SKU within the product", func(t *testing.T) {
		p := createTestProduct(t)
		_, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)

		_, err = p.AddVariant("mug-blue", "Blue again", 1300, 2)
		assert.Error(t, err)
	})

	t.Run("rejects negative price or stock", func(t *testing.T) {
		p := createTestProduct(t)
		_, err := p.AddVariant("MUG-A", "A", -1, 10)
		assert.Error(t, err)
		_, err = p.AddVariant("MUG-A", "A", 100, -1)
		assert.Error(t, err)
	})

	t.Run("rejects invalid SKU characters", func(t *testing.T) {
		p := createTestProduct(t)
		_, err := p.AddVariant("MUG BLUE!", "Blue", 100, 1)
		assert.Error(t, err)
	})
}

func TestProduct_SetDefaultVariant(t *testing.T) {
	t.Run("exactly one default at a time", func(t *testing.T) {
		p := createTestProduct(t)
		v1, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)
		v2, err := p.AddVariant("MUG-RED", "Red", 1250, 5)
		require.NoError(t, err)

		require.NoError(t, p.SetDefaultVariant(v2.ID))

		defaults := 0
		for _, v := range p.Variants {
			if v.IsDefault {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults)
		assert.Equal(t, v2.ID, p.DefaultVariant().ID)
		_ = v1
	})

	t.Run("fails for unknown variant", func(t *testing.T) {
		p := createTestProduct(t)
		assert.Error(t, p.SetDefaultVariant(uuid.New()))
	})

	t.Run("fails for removed variant", func(t *testing.T) {
		p := createTestProduct(t)
		v1, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)
		_, err = p.AddVariant("MUG-RED", "Red", 1250, 5)
		require.NoError(t, err)

		require.NoError(t, p.RemoveVariant(v1.ID))
		assert.Error(t, p.SetDefaultVariant(v1.ID))
	})
}

func TestProduct_RemoveVariant(t *testing.T) {
	t.Run("soft removes and reassigns the default", func(t *testing.T) {
		p := createTestProduct(t)
		v1, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)
		v2, err := p.AddVariant("MUG-RED", "Red", 1250, 5)
		require.NoError(t, err)

		require.NoError(t, p.RemoveVariant(v1.ID))

		// still present for historical orders, just flagged
		assert.Len(t, p.Variants, 2)
		assert.True(t, p.Variants[0].Removed)
		require.NotNil(t, p.DefaultVariant())
		assert.Equal(t, v2.ID, p.DefaultVariant().ID)
	})

	t.Run("removing twice fails", func(t *testing.T) {
		p := createTestProduct(t)
		v, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)

		require.NoError(t, p.RemoveVariant(v.ID))
		assert.Error(t, p.RemoveVariant(v.ID))
	})
}

func TestProduct_UpdateVariant(t *testing.T) {
	t.Run("updates name and price only", func(t *testing.T) {
		p := createTestProduct(t)
		v, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
		require.NoError(t, err)

		require.NoError(t, p.UpdateVariant(v.ID, "Navy Blue", 1399))

		updated := p.findVariant(v.ID)
		assert.Equal(t, "Navy Blue", updated.Name)
		assert.Equal(t, int64(1399), updated.Price)
		assert.Equal(t, int64(10), updated.Stock)
	})

	t.Run("fails for unknown variant", func(t *testing.T) {
		p := createTestProduct(t)
		assert.Error(t, p.UpdateVariant(uuid.New(), "Name", 100))
	})
}

func TestVariant_PriceMoney(t *testing.T) {
	p := createTestProduct(t)
	v, err := p.AddVariant("MUG-BLUE", "Blue", 1250, 10)
	require.NoError(t, err)
	assert.Equal(t, "12.50", v.PriceMoney().Display())
}

func TestNewCategory(t *testing.T) {
	t.Run("creates category", func(t *testing.T) {
		c, err := NewCategory(uuid.New(), "Drinkware", "drinkware")
		require.NoError(t, err)
		assert.Equal(t, "Drinkware", c.Name)
	})

	t.Run("cannot be its own parent", func(t *testing.T) {
		c, err := NewCategory(uuid.New(), "Drinkware", "drinkware")
		require.NoError(t, err)
		id := c.ID
		assert.Error(t, c.SetParent(&id))
	})
}
