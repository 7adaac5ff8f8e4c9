package catalog

import (
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Product represents a sellable product in the catalog.
// It is the aggregate root for catalog operations; stock itself is tracked
// per variant.
type Product struct {
	shared.TenantAggregateRoot
	Name        string           `gorm:"type:varchar(200);not null"`
	Slug        string           `gorm:"type:varchar(200);not null;uniqueIndex:idx_product_tenant_slug,priority:2"`
	Description string           `gorm:"type:text"`
	CategoryID  *uuid.UUID       `gorm:"type:uuid;index"`
	IsActive    bool             `gorm:"not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductVariant is a purchasable configuration of a product and the unit at
// which stock is tracked. Price is stored in integer minor currency units.
type ProductVariant struct {
	shared.BaseEntity
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_variant_tenant_sku,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_tenant_sku,priority:2"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Price     int64     `gorm:"not null;default:0"`
	Stock     int64     `gorm:"not null;default:0"`
	IsDefault bool      `gorm:"not null;default:false"`
	Removed   bool      `gorm:"not null;default:false"`
	Version   int       `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// PriceMoney returns the variant price as a Money value object
func (v *ProductVariant) PriceMoney() valueobject.Money {
	return valueobject.NewMoney(v.Price)
}

// Available reports whether the variant can be sold
func (v *ProductVariant) Available() bool {
	return !v.Removed
}

// NewProduct creates a new product with no variants yet
func NewProduct(tenantID uuid.UUID, name, slug string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Slug:                slug,
		IsActive:            true,
		Variants:            make([]ProductVariant, 0),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory sets the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// Activate makes the product visible to the storefront
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AddVariant adds a variant to the product. The first non-removed variant
// becomes the default automatically.
func (p *Product) AddVariant(sku, name string, price, stock int64) (*ProductVariant, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	sku = strings.ToUpper(strings.TrimSpace(sku))
	for i := range p.Variants {
		if p.Variants[i].SKU == sku && !p.Variants[i].Removed {
			return nil, shared.NewDomainError("DUPLICATE_SKU", "A variant with this SKU already exists")
		}
	}

	variant := ProductVariant{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   p.TenantID,
		ProductID:  p.ID,
		SKU:        sku,
		Name:       name,
		Price:      price,
		Stock:      stock,
		IsDefault:  !p.hasDefault(),
		Version:    1,
	}
	p.Variants = append(p.Variants, variant)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewVariantAddedEvent(p, &variant))

	return &p.Variants[len(p.Variants)-1], nil
}

// UpdateVariant updates a variant's name and price. Stock is never edited
// here; all stock changes go through the ledger.
func (p *Product) UpdateVariant(variantID uuid.UUID, name string, price int64) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if price < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	variant := p.findVariant(variantID)
	if variant == nil {
		return shared.ErrNotFound
	}

	variant.Name = name
	variant.Price = price
	variant.UpdatedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetDefaultVariant marks one variant as default and clears the flag on all
// others. Exactly one non-removed variant per product may be default.
func (p *Product) SetDefaultVariant(variantID uuid.UUID) error {
	target := p.findVariant(variantID)
	if target == nil {
		return shared.ErrNotFound
	}
	if target.Removed {
		return shared.NewDomainError("VALIDATION_ERROR", "A removed variant cannot be the default")
	}

	for i := range p.Variants {
		p.Variants[i].IsDefault = p.Variants[i].ID == variantID
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RemoveVariant soft-removes a variant. Variants referenced by historical
// orders are never hard-deleted. If the removed variant was the default the
// flag moves to the first remaining variant.
func (p *Product) RemoveVariant(variantID uuid.UUID) error {
	variant := p.findVariant(variantID)
	if variant == nil {
		return shared.ErrNotFound
	}
	if variant.Removed {
		return shared.NewDomainError("ALREADY_REMOVED", "Variant is already removed")
	}

	wasDefault := variant.IsDefault
	variant.Removed = true
	variant.IsDefault = false
	variant.UpdatedAt = time.Now()

	if wasDefault {
		for i := range p.Variants {
			if !p.Variants[i].Removed {
				p.Variants[i].IsDefault = true
				break
			}
		}
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewVariantRemovedEvent(p, variant))

	return nil
}

// DefaultVariant returns the default variant, or nil if none remains
func (p *Product) DefaultVariant() *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].IsDefault && !p.Variants[i].Removed {
			return &p.Variants[i]
		}
	}
	return nil
}

func (p *Product) hasDefault() bool {
	return p.DefaultVariant() != nil
}

func (p *Product) findVariant(variantID uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

var skuAllowed = func(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}

// validateSKU validates a variant SKU
func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !skuAllowed(r) {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates a product or variant name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

// validateSlug validates a URL slug used by the storefront
func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > 200 {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 200 characters")
	}
	for _, r := range slug {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return shared.NewDomainError("INVALID_SLUG", "Slug can only contain lowercase letters, numbers, and hyphens")
		}
	}
	return nil
}
