package inventory

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AdjustmentRepository persists stock movement records. Adjustments are
// append-only; there is no update or delete.
type AdjustmentRepository interface {
	Save(ctx context.Context, adjustment *InventoryAdjustment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InventoryAdjustment, error)
	ListByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) (shared.Paginated[*InventoryAdjustment], error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*InventoryAdjustment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*InventoryAdjustment], error)
}
