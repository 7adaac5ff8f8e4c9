package identity

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository manages tenant persistence
type TenantRepository interface {
	Save(ctx context.Context, tenant *Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Tenant], error)
}

// MembershipRepository manages membership persistence, always tenant-scoped
type MembershipRepository interface {
	Save(ctx context.Context, membership *Membership) error
	SaveWithLock(ctx context.Context, membership *Membership) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Membership, error)
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Membership], error)
	CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
