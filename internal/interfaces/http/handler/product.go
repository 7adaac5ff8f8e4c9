package handler

import (
	catalogapp "github.com/commerce/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler exposes catalog management endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
	importer *catalogapp.ImportService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService, importer *catalogapp.ImportService) *ProductHandler {
	return &ProductHandler{
		products: products,
		importer: importer,
	}
}

// RegisterRoutes registers catalog routes on the authenticated API group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.POST("/import", h.BulkImport)
		products.GET("/search", h.Search)
		products.GET("/slug/:slug", h.GetBySlug)
		products.GET("/slug/:slug/related", h.Related)
		products.GET("/:id", h.GetByID)
		products.PUT("/:id", h.Update)
		products.POST("/:id/variants", h.AddVariant)
		products.PUT("/:id/variants/:variantId", h.UpdateVariant)
		products.DELETE("/:id/variants/:variantId", h.RemoveVariant)
		products.PUT("/:id/variants/:variantId/default", h.SetDefaultVariant)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id/products", h.ListByCategory)
	}
}

// CreateCategoryRequest creates a catalog category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,max=200"`
	Slug     string     `json:"slug" binding:"required,max=200"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// BulkImportRequest carries the rows of a bulk product import
type BulkImportRequest struct {
	Rows []catalogapp.ProductRow `json:"rows" binding:"required,min=1"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), actor, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) AddVariant(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req catalogapp.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.AddVariant(c.Request.Context(), actor, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}

	var req catalogapp.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.UpdateVariant(c.Request.Context(), actor, productID, variantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) RemoveVariant(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}

	product, err := h.products.RemoveVariant(c.Request.Context(), actor, productID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) SetDefaultVariant(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}

	product, err := h.products.SetDefaultVariant(c.Request.Context(), actor, productID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), actor.TenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) GetBySlug(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	product, err := h.products.GetBySlug(c.Request.Context(), actor.TenantID, c.Param("slug"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.products.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ProductHandler) Search(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		h.BadRequest(c, "q is required")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.products.Search(c.Request.Context(), actor.TenantID, query, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ProductHandler) Related(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	limit := 4
	if v := c.Query("limit"); v != "" {
		if parsed, err := parsePositiveInt(v); err == nil {
			limit = parsed
		}
	}

	related, err := h.products.Related(c.Request.Context(), actor.TenantID, c.Param("slug"), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, related)
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.products.ListByCategory(c.Request.Context(), actor.TenantID, categoryID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	category, err := h.products.CreateCategory(c.Request.Context(), actor, req.Name, req.Slug, req.ParentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, category)
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	categories, err := h.products.ListCategories(c.Request.Context(), actor.TenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, categories)
}

func (h *ProductHandler) BulkImport(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.importer.BulkImportProducts(c.Request.Context(), actor, req.Rows)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
