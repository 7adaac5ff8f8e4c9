package identity

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
)

// Gate authorizes an actor for one permission key. Every mutating engine
// operation consults it before proceeding; reads are tenant-scoped only and
// skip the gate.
type Gate interface {
	Authorize(ctx context.Context, actor identity.Actor, key identity.PermissionKey) error
}

// PermissionService resolves an actor's membership and checks permission
// keys against its effective authorization.
type PermissionService struct {
	memberships identity.MembershipRepository
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(memberships identity.MembershipRepository) *PermissionService {
	return &PermissionService{memberships: memberships}
}

// Authorize returns nil when the actor holds the permission key.
// The internal system actor (scheduler, storefront gateway) always passes.
func (s *PermissionService) Authorize(ctx context.Context, actor identity.Actor, key identity.PermissionKey) error {
	if actor.IsSystem() {
		return nil
	}

	membership, err := s.memberships.FindByUser(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return shared.ErrPermissionDenied
	}

	if !membership.Authorization().Allows(key) {
		return shared.ErrPermissionDenied
	}
	return nil
}

var _ Gate = (*PermissionService)(nil)
