package order

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository manages order persistence, always tenant-scoped. Orders are
// never deleted; they only move through status transitions.
type Repository interface {
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Order], error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[*Order], error)
	CountCreatedOn(ctx context.Context, tenantID uuid.UUID, datePrefix string) (int64, error)
}
