package inventory

import (
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the inventory domain
const (
	EventStockAdjusted = "inventory.stock.adjusted"
	EventStockReserved = "inventory.stock.reserved"
	EventStockLow      = "inventory.stock.low"
)

// StockAdjustedEvent is emitted after a manual stock correction commits
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	VariantID  string `json:"variant_id"`
	Delta      int64  `json:"delta"`
	StockAfter int64  `json:"stock_after"`
	Reason     string `json:"reason"`
}

// NewStockAdjustedEvent creates a new stock adjusted event
func NewStockAdjustedEvent(adj *InventoryAdjustment) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockAdjusted, "InventoryAdjustment", adj.ID, adj.TenantID),
		VariantID:       adj.VariantID.String(),
		Delta:           adj.Delta,
		StockAfter:      adj.StockAfter,
		Reason:          adj.Reason,
	}
}

// StockReservedEvent is emitted after an order reservation commits.
// One event covers the whole batch.
type StockReservedEvent struct {
	shared.BaseDomainEvent
	Items []ReservedQuantity `json:"items"`
}

// ReservedQuantity is one line of a committed reservation
type ReservedQuantity struct {
	VariantID  string `json:"variant_id"`
	Quantity   int64  `json:"quantity"`
	StockAfter int64  `json:"stock_after"`
}

// NewStockReservedEvent creates a new stock reserved event
func NewStockReservedEvent(tenantID, orderID uuid.UUID, items []ReservedQuantity) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockReserved, "Order", orderID, tenantID),
		Items:           items,
	}
}

// StockLowEvent is emitted when a movement leaves a variant at or below the
// low stock threshold. Read models subscribe to it for dashboards.
type StockLowEvent struct {
	shared.BaseDomainEvent
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

// NewStockLowEvent creates a new low stock event
func NewStockLowEvent(tenantID, variantID uuid.UUID, sku string, stock, threshold int64) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockLow, "ProductVariant", variantID, tenantID),
		VariantID:       variantID.String(),
		SKU:             sku,
		Stock:           stock,
		Threshold:       threshold,
	}
}
