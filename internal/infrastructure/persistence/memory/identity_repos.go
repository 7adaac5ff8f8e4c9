package memory

import (
	"context"
	"strings"

	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository is the in-memory identity.TenantRepository
type TenantRepository struct {
	store  *Store
	locked bool
}

// NewTenantRepository creates a standalone tenant repository
func NewTenantRepository(store *Store) *TenantRepository {
	return &TenantRepository{store: store}
}

// Save stores a tenant
func (r *TenantRepository) Save(_ context.Context, tenant *identity.Tenant) error {
	defer r.store.acquire(r.locked)()
	r.store.tenants[tenant.ID] = *tenant
	return nil
}

// FindByID returns one tenant
func (r *TenantRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	defer r.store.acquire(r.locked)()
	t, ok := r.store.tenants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := t
	return &out, nil
}

// FindBySlug returns one tenant by slug
func (r *TenantRepository) FindBySlug(_ context.Context, slug string) (*identity.Tenant, error) {
	defer r.store.acquire(r.locked)()
	slug = strings.ToLower(slug)
	for _, t := range r.store.tenants {
		if t.Slug == slug {
			out := t
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ExistsBySlug reports whether a slug is taken
func (r *TenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// List returns a page of tenants
func (r *TenantRepository) List(_ context.Context, filter shared.Filter) (shared.Paginated[*identity.Tenant], error) {
	defer r.store.acquire(r.locked)()
	out := make([]*identity.Tenant, 0)
	for _, t := range r.store.tenants {
		copied := t
		out = append(out, &copied)
	}
	newestFirst(out, func(t *identity.Tenant) int64 { return t.CreatedAt.UnixNano() })
	return paginate(out, filter), nil
}

var _ identity.TenantRepository = (*TenantRepository)(nil)

// MembershipRepository is the in-memory identity.MembershipRepository
type MembershipRepository struct {
	store  *Store
	locked bool
}

// NewMembershipRepository creates a standalone membership repository
func NewMembershipRepository(store *Store) *MembershipRepository {
	return &MembershipRepository{store: store}
}

// Save stores a membership
func (r *MembershipRepository) Save(_ context.Context, membership *identity.Membership) error {
	defer r.store.acquire(r.locked)()
	r.store.memberships[membership.ID] = clone(membership)
	return nil
}

// SaveWithLock rejects writes against a stale version
func (r *MembershipRepository) SaveWithLock(_ context.Context, membership *identity.Membership) error {
	defer r.store.acquire(r.locked)()
	existing, ok := r.store.memberships[membership.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.GetVersion() != membership.GetVersion()-1 {
		return shared.ErrConcurrencyConflict
	}
	r.store.memberships[membership.ID] = clone(membership)
	return nil
}

// FindByID returns one membership
func (r *MembershipRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*identity.Membership, error) {
	defer r.store.acquire(r.locked)()
	m, ok := r.store.memberships[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := clone(&m)
	return &out, nil
}

// FindByUser returns the membership of one user within a tenant
func (r *MembershipRepository) FindByUser(_ context.Context, tenantID, userID uuid.UUID) (*identity.Membership, error) {
	defer r.store.acquire(r.locked)()
	for _, m := range r.store.memberships {
		if m.TenantID == tenantID && m.UserID == userID {
			out := clone(&m)
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

// List returns a page of the tenant's memberships
func (r *MembershipRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*identity.Membership], error) {
	defer r.store.acquire(r.locked)()
	out := make([]*identity.Membership, 0)
	for _, m := range r.store.memberships {
		if m.TenantID != tenantID {
			continue
		}
		copied := clone(&m)
		out = append(out, &copied)
	}
	newestFirst(out, func(m *identity.Membership) int64 { return m.CreatedAt.UnixNano() })
	return paginate(out, filter), nil
}

// CountAdmins counts admin memberships of a tenant
func (r *MembershipRepository) CountAdmins(_ context.Context, tenantID uuid.UUID) (int64, error) {
	defer r.store.acquire(r.locked)()
	var count int64
	for _, m := range r.store.memberships {
		if m.TenantID == tenantID && m.Role == identity.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func clone(m *identity.Membership) identity.Membership {
	out := *m
	out.Permissions = append([]identity.PermissionKey(nil), m.Permissions...)
	return out
}

var _ identity.MembershipRepository = (*MembershipRepository)(nil)
