package handler

import (
	"errors"
	"net/http"

	orderapp "github.com/commerce/backoffice/internal/application/order"
	storeapp "github.com/commerce/backoffice/internal/application/store"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartTokenHeader identifies an anonymous shopper's cart. It is issued on
// the first cart write and echoed back on every cart response.
const CartTokenHeader = "X-Cart-Token"

// StoreHandler exposes the public storefront routes. No authentication:
// the gateway acts for anonymous shoppers and calls the engine with a
// privileged internal actor.
type StoreHandler struct {
	BaseHandler
	storefront *storeapp.StorefrontService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storefront *storeapp.StorefrontService) *StoreHandler {
	return &StoreHandler{storefront: storefront}
}

// RegisterRoutes registers storefront routes under /store/:tenantSlug
func (h *StoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	store := rg.Group("/store/:tenantSlug")
	{
		store.GET("/products", h.Products)
		store.GET("/products/search", h.SearchProducts)
		store.GET("/products/:slug", h.ProductBySlug)
		store.GET("/products/:slug/related", h.RelatedProducts)
		store.GET("/categories", h.Categories)
		store.GET("/categories/:slug", h.CategoryBySlug)
		store.GET("/categories/:slug/products", h.CategoryProducts)
		store.GET("/orders/:orderNumber", h.OrderLookup)
		store.GET("/cart", h.GetCart)
		store.POST("/cart/items", h.AddCartItem)
		store.PATCH("/cart/items/:itemId", h.UpdateCartItem)
		store.DELETE("/cart/items/:itemId", h.RemoveCartItem)
		store.POST("/checkout", h.Checkout)
	}
}

// AddCartItemRequest adds a variant to the cart
type AddCartItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest changes one cart line's quantity
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" binding:"gte=0"`
}

// CheckoutRequest turns the cart into an order
type CheckoutRequest struct {
	Customer orderapp.CustomerInfoRequest `json:"customer" binding:"required"`
}

// storeError sends the storefront's flat error body. The public surface
// uses {"error": "..."} rather than the back-office envelope.
func (h *StoreHandler) storeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// handleStoreError maps a service error to the flat storefront shape,
// keeping the same status mapping as the back-office API
func (h *StoreHandler) handleStoreError(c *gin.Context, err error) {
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		h.storeError(c, http.StatusUnprocessableEntity, stockErr.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.storeError(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Message)
		return
	}

	h.storeError(c, http.StatusInternalServerError, "An unexpected error occurred")
}

// resolveTenant maps the path slug to a tenant, or responds 404
func (h *StoreHandler) resolveTenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := h.storefront.ResolveTenant(c.Request.Context(), c.Param("tenantSlug"))
	if err != nil {
		h.handleStoreError(c, err)
		return uuid.Nil, false
	}
	return tenantID, true
}

// cartResponse returns the cart with its token echoed in the header
func (h *StoreHandler) cartResponse(c *gin.Context, cart *storeapp.Cart) {
	c.Header(CartTokenHeader, cart.Token)
	h.Success(c, cart)
}

func (h *StoreHandler) Products(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.storefront.Products(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *StoreHandler) SearchProducts(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		h.storeError(c, http.StatusBadRequest, "q is required")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.storefront.SearchProducts(c.Request.Context(), tenantID, query, filter)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *StoreHandler) ProductBySlug(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	product, err := h.storefront.ProductBySlug(c.Request.Context(), tenantID, c.Param("slug"))
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *StoreHandler) RelatedProducts(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	related, err := h.storefront.RelatedProducts(c.Request.Context(), tenantID, c.Param("slug"))
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Success(c, related)
}

func (h *StoreHandler) Categories(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	categories, err := h.storefront.Categories(c.Request.Context(), tenantID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Success(c, categories)
}

func (h *StoreHandler) CategoryBySlug(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	category, err := h.storefront.CategoryBySlug(c.Request.Context(), tenantID, c.Param("slug"))
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Success(c, category)
}

func (h *StoreHandler) CategoryProducts(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.storefront.CategoryProducts(c.Request.Context(), tenantID, c.Param("slug"), filter)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *StoreHandler) OrderLookup(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		h.storeError(c, http.StatusBadRequest, "email is required")
		return
	}

	resp, err := h.storefront.OrderLookup(c.Request.Context(), tenantID, c.Param("orderNumber"), email)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *StoreHandler) GetCart(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	cart, err := h.storefront.GetCart(c.Request.Context(), tenantID, c.GetHeader(CartTokenHeader))
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.cartResponse(c, cart)
}

func (h *StoreHandler) AddCartItem(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.storefront.AddCartItem(c.Request.Context(), tenantID, c.GetHeader(CartTokenHeader), req.VariantID, req.Quantity)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.cartResponse(c, cart)
}

func (h *StoreHandler) UpdateCartItem(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.storeError(c, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.storefront.UpdateCartItem(c.Request.Context(), tenantID, c.GetHeader(CartTokenHeader), itemID, req.Quantity)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.cartResponse(c, cart)
}

func (h *StoreHandler) RemoveCartItem(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.storeError(c, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	cart, err := h.storefront.RemoveCartItem(c.Request.Context(), tenantID, c.GetHeader(CartTokenHeader), itemID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.cartResponse(c, cart)
}

func (h *StoreHandler) Checkout(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.storeError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.storefront.Checkout(c.Request.Context(), tenantID, c.GetHeader(CartTokenHeader), req.Customer)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	h.Created(c, resp)
}
