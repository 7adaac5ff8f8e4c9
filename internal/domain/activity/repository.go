package activity

import (
	"context"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists audit entries. Entries are append-only; the only
// deletion path is the retention purge.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)
	ListBySubject(ctx context.Context, tenantID, subjectID uuid.UUID, filter shared.Filter) (shared.Paginated[*Entry], error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Entry], error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
