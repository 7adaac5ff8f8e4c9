package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a shopper's cart
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int64     `json:"quantity"`
}

// Cart is an anonymous shopper's cart, keyed by an opaque token issued on
// first write. Carts are soft state: prices and stock are not reserved until
// checkout.
type Cart struct {
	Token     string     `json:"token"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart with a fresh token
func NewCart(tenantID uuid.UUID) *Cart {
	return &Cart{
		Token:     uuid.NewString(),
		TenantID:  tenantID,
		Items:     make([]CartItem, 0),
		UpdatedAt: time.Now(),
	}
}

// Add merges a quantity into the cart, extending the existing line when the
// variant is already present
func (c *Cart) Add(variantID uuid.UUID, quantity int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = time.Now()
			return &c.Items[i]
		}
	}
	item := CartItem{ID: uuid.New(), VariantID: variantID, Quantity: quantity}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return &c.Items[len(c.Items)-1]
}

// UpdateQuantity sets the quantity of one line; zero removes it
func (c *Cart) UpdateQuantity(itemID uuid.UUID, quantity int64) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Remove deletes one line
func (c *Cart) Remove(itemID uuid.UUID) bool {
	return c.UpdateQuantity(itemID, 0)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartStore persists carts with a TTL. Implementations: redis for
// deployments, in-memory for development and tests.
type CartStore interface {
	Get(ctx context.Context, tenantID uuid.UUID, token string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, tenantID uuid.UUID, token string) error
}
