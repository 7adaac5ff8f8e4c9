package inventory

import (
	"fmt"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// InsufficientStockError reports which variant could not satisfy a request.
// It unwraps to shared.ErrInsufficientStock so callers can match either the
// sentinel or the detail.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Requested int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d",
		e.VariantID, e.Requested, e.Available)
}

// Unwrap returns the insufficient stock sentinel
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// NewInsufficientStockError creates a new insufficient stock error
func NewInsufficientStockError(variantID uuid.UUID, requested, available int64) *InsufficientStockError {
	return &InsufficientStockError{
		VariantID: variantID,
		Requested: requested,
		Available: available,
	}
}
