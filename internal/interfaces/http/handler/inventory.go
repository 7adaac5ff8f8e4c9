package handler

import (
	inventoryapp "github.com/commerce/backoffice/internal/application/inventory"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler exposes stock ledger endpoints
type InventoryHandler struct {
	BaseHandler
	ledger  *inventoryapp.LedgerService
	monitor *inventoryapp.LowStockMonitor
}

// NewInventoryHandler creates a new InventoryHandler. The monitor may be
// nil when low-stock alerting is not wired.
func NewInventoryHandler(ledger *inventoryapp.LedgerService, monitor *inventoryapp.LowStockMonitor) *InventoryHandler {
	return &InventoryHandler{
		ledger:  ledger,
		monitor: monitor,
	}
}

// RegisterRoutes registers inventory routes on the authenticated API group
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.POST("/adjust", h.Adjust)
		inv.GET("/variants/:variantId/stock", h.Stock)
		inv.GET("/variants/:variantId/history", h.History)
		inv.GET("/alerts/low-stock", h.LowStockAlerts)
	}
}

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
	Type      string    `json:"type" binding:"required"`
	Reason    string    `json:"reason" binding:"required,min=1,max=255"`
}

// AdjustStockResponse reports the stock level after an adjustment
type AdjustStockResponse struct {
	VariantID  uuid.UUID `json:"variant_id"`
	StockAfter int64     `json:"stock_after"`
}

// StockResponse reports the current stock level of a variant
type StockResponse struct {
	VariantID uuid.UUID `json:"variant_id"`
	Stock     int64     `json:"stock"`
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	adjType := inventory.AdjustmentType(req.Type)
	if !adjType.IsValid() {
		h.BadRequest(c, "Invalid adjustment type")
		return
	}

	stockAfter, err := h.ledger.Adjust(c.Request.Context(), actor, req.VariantID, req.Delta, adjType, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, AdjustStockResponse{
		VariantID:  req.VariantID,
		StockAfter: stockAfter,
	})
}

func (h *InventoryHandler) Stock(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}

	stock, err := h.ledger.StockOf(c.Request.Context(), actor.TenantID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, StockResponse{
		VariantID: variantID,
		Stock:     stock,
	})
}

func (h *InventoryHandler) History(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.ledger.History(c.Request.Context(), actor.TenantID, variantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *InventoryHandler) LowStockAlerts(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	if h.monitor == nil {
		h.Success(c, []inventoryapp.LowStockAlert{})
		return
	}

	h.Success(c, h.monitor.Alerts(actor.TenantID))
}
