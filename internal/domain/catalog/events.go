package catalog

import (
	"github.com/commerce/backoffice/internal/domain/shared"
)

// Event types for the catalog domain
const (
	EventProductCreated = "catalog.product.created"
	EventProductUpdated = "catalog.product.updated"
	EventVariantAdded   = "catalog.variant.added"
	EventVariantRemoved = "catalog.variant.removed"
)

// ProductCreatedEvent is emitted when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewProductCreatedEvent creates a new product created event
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductCreated, "Product", p.ID, p.TenantID),
		Name:            p.Name,
		Slug:            p.Slug,
	}
}

// ProductUpdatedEvent is emitted when a product changes
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewProductUpdatedEvent creates a new product updated event
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductUpdated, "Product", p.ID, p.TenantID),
		Name:            p.Name,
	}
}

// VariantAddedEvent is emitted when a variant is added to a product
type VariantAddedEvent struct {
	shared.BaseDomainEvent
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
}

// NewVariantAddedEvent creates a new variant added event
func NewVariantAddedEvent(p *Product, v *ProductVariant) *VariantAddedEvent {
	return &VariantAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVariantAdded, "Product", p.ID, p.TenantID),
		VariantID:       v.ID.String(),
		SKU:             v.SKU,
	}
}

// VariantRemovedEvent is emitted when a variant is soft-removed
type VariantRemovedEvent struct {
	shared.BaseDomainEvent
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
}

// NewVariantRemovedEvent creates a new variant removed event
func NewVariantRemovedEvent(p *Product, v *ProductVariant) *VariantRemovedEvent {
	return &VariantRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVariantRemoved, "Product", p.ID, p.TenantID),
		VariantID:       v.ID.String(),
		SKU:             v.SKU,
	}
}
