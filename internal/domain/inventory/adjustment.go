package inventory

import (
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AdjustmentType classifies why stock moved
type AdjustmentType string

const (
	AdjustmentTypeReceived  AdjustmentType = "received"
	AdjustmentTypeSold      AdjustmentType = "sold"
	AdjustmentTypeAdjusted  AdjustmentType = "adjusted"
	AdjustmentTypeReturned  AdjustmentType = "returned"
	AdjustmentTypeRestocked AdjustmentType = "restocked"
)

// IsValid checks if the adjustment type is known
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeReceived, AdjustmentTypeSold, AdjustmentTypeAdjusted,
		AdjustmentTypeReturned, AdjustmentTypeRestocked:
		return true
	}
	return false
}

// String returns the string representation
func (t AdjustmentType) String() string {
	return string(t)
}

// InventoryAdjustment is one immutable record of a stock movement. It is
// write-once; there are no mutating methods beyond construction.
type InventoryAdjustment struct {
	shared.BaseEntity
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	VariantID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Delta      int64          `gorm:"not null"`
	Type       AdjustmentType `gorm:"type:varchar(20);not null"`
	Reason     string         `gorm:"type:varchar(500)"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null"`
	StockAfter int64          `gorm:"not null"`
	OrderID    *uuid.UUID     `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InventoryAdjustment) TableName() string {
	return "inventory_adjustments"
}

// NewAdjustment records one stock movement. Delta is signed; StockAfter is
// the variant's stock level after the movement was applied.
func NewAdjustment(tenantID, variantID, actorID uuid.UUID, delta int64, adjType AdjustmentType, reason string, stockAfter int64) (*InventoryAdjustment, error) {
	if !adjType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Unknown adjustment type")
	}
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_DELTA", "Adjustment delta cannot be zero")
	}
	if stockAfter < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock after adjustment cannot be negative")
	}
	if len(reason) > 500 {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	return &InventoryAdjustment{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		VariantID:  variantID,
		Delta:      delta,
		Type:       adjType,
		Reason:     reason,
		ActorID:    actorID,
		StockAfter: stockAfter,
	}, nil
}

// ForOrder links the adjustment to the order that caused it
func (a *InventoryAdjustment) ForOrder(orderID uuid.UUID) *InventoryAdjustment {
	a.OrderID = &orderID
	return a
}
