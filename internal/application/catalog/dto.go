package catalog

import (
	"time"

	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
)

// CreateProductRequest creates a product with an initial set of variants
type CreateProductRequest struct {
	Name        string                 `json:"name" binding:"required,max=200"`
	Slug        string                 `json:"slug" binding:"required,max=200"`
	Description string                 `json:"description" binding:"max=2000"`
	CategoryID  *uuid.UUID             `json:"category_id"`
	Variants    []CreateVariantRequest `json:"variants" binding:"dive"`
}

// CreateVariantRequest adds one variant to a product
type CreateVariantRequest struct {
	SKU   string `json:"sku" binding:"required,max=50"`
	Name  string `json:"name" binding:"required,max=200"`
	Price int64  `json:"price" binding:"gte=0"`
	Stock int64  `json:"stock" binding:"gte=0"`
}

// UpdateProductRequest updates a product's basic information
type UpdateProductRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

// UpdateVariantRequest updates a variant's name and price
type UpdateVariantRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Price int64  `json:"price" binding:"gte=0"`
}

// VariantResponse is the read model for a variant
type VariantResponse struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Stock        int64     `json:"stock"`
	IsDefault    bool      `json:"is_default"`
	Removed      bool      `json:"removed"`
}

// ProductResponse is the read model for a product
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	CategoryID  *uuid.UUID        `json:"category_id"`
	IsActive    bool              `json:"is_active"`
	Variants    []VariantResponse `json:"variants"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToVariantResponse converts a variant to its read model
func ToVariantResponse(v *catalog.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:           v.ID,
		SKU:          v.SKU,
		Name:         v.Name,
		Price:        v.Price,
		PriceDisplay: v.PriceMoney().Display(),
		Stock:        v.Stock,
		IsDefault:    v.IsDefault,
		Removed:      v.Removed,
	}
}

// ToProductResponse converts a product to its read model
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		variants = append(variants, ToVariantResponse(&p.Variants[i]))
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CategoryResponse is the read model for a category
type CategoryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// ToCategoryResponse converts a category to its read model
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		ParentID: c.ParentID,
	}
}
