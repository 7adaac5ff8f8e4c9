package handler

import (
	orderapp "github.com/commerce/backoffice/internal/application/order"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler exposes order workflow endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.WorkflowService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.WorkflowService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order routes on the authenticated API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.POST("", h.Create)
		orders.GET("/number/:orderNumber", h.GetByNumber)
		orders.GET("/:id", h.GetByID)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.POST("/:id/repeat", h.Repeat)
	}
}

// UpdateOrderStatusRequest moves an order to a target status. Restock is
// an explicit opt-in on cancel/refund and requires its own permission.
type UpdateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Restock bool   `json:"restock"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orders.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

func (h *OrderHandler) Repeat(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orders.Repeat(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	target := order.OrderStatus(req.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Invalid order status")
		return
	}

	resp, err := h.orders.UpdateStatus(c.Request.Context(), actor, orderID, target, req.Restock)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orders.GetByID(c.Request.Context(), actor.TenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *OrderHandler) GetByNumber(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	resp, err := h.orders.GetByNumber(c.Request.Context(), actor.TenantID, c.Param("orderNumber"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.orders.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
