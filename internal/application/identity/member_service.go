package identity

import (
	"context"
	"fmt"

	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// MemberService handles membership management operations. Both role and
// permission edits go through the gate before touching the target.
type MemberService struct {
	memberships    identity.MembershipRepository
	activities     activity.Repository
	gate           Gate
	eventPublisher shared.EventPublisher
}

// NewMemberService creates a new MemberService
func NewMemberService(memberships identity.MembershipRepository, activities activity.Repository, gate Gate) *MemberService {
	return &MemberService{
		memberships: memberships,
		activities:  activities,
		gate:        gate,
	}
}

// SetEventPublisher sets the event publisher for read-model subscriptions
func (s *MemberService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddMember creates a membership for a user in the actor's tenant
func (s *MemberService) AddMember(ctx context.Context, actor identity.Actor, userID uuid.UUID, role identity.Role) (*MemberResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermMemberUpdateRole); err != nil {
		return nil, err
	}

	existing, err := s.memberships.FindByUser(ctx, actor.TenantID, userID)
	if err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	membership, err := identity.NewMembership(actor.TenantID, userID, role)
	if err != nil {
		return nil, err
	}

	if err := s.memberships.Save(ctx, membership); err != nil {
		return nil, err
	}

	s.recordChange(ctx, actor, membership, fmt.Sprintf("Added member with role %s", role))
	s.publishEvents(ctx, membership)

	resp := ToMemberResponse(membership)
	return &resp, nil
}

// UpdateMemberRole changes the role of an existing membership.
// Demoting the tenant's last admin is rejected to avoid a lockout.
func (s *MemberService) UpdateMemberRole(ctx context.Context, actor identity.Actor, userID uuid.UUID, role identity.Role) (*MemberResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermMemberUpdateRole); err != nil {
		return nil, err
	}

	membership, err := s.memberships.FindByUser(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}

	if membership.IsAdmin() && role != identity.RoleAdmin {
		admins, err := s.memberships.CountAdmins(ctx, actor.TenantID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, shared.NewDomainError("LAST_ADMIN", "Cannot demote the only admin of a tenant")
		}
	}

	if err := membership.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.memberships.SaveWithLock(ctx, membership); err != nil {
		return nil, err
	}

	s.recordChange(ctx, actor, membership, fmt.Sprintf("Changed member role to %s", role))
	s.publishEvents(ctx, membership)

	resp := ToMemberResponse(membership)
	return &resp, nil
}

// UpdatePermissions replaces a membership's granular permission set
func (s *MemberService) UpdatePermissions(ctx context.Context, actor identity.Actor, userID uuid.UUID, keys []identity.PermissionKey) (*MemberResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermMemberUpdatePerms); err != nil {
		return nil, err
	}

	membership, err := s.memberships.FindByUser(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := membership.SetPermissions(keys); err != nil {
		return nil, err
	}

	if err := s.memberships.SaveWithLock(ctx, membership); err != nil {
		return nil, err
	}

	s.recordChange(ctx, actor, membership, fmt.Sprintf("Replaced member permissions (%d keys)", len(membership.Permissions)))
	s.publishEvents(ctx, membership)

	resp := ToMemberResponse(membership)
	return &resp, nil
}

// ApplyRoleTemplate overwrites a membership's permission set with a named
// template bundle
func (s *MemberService) ApplyRoleTemplate(ctx context.Context, actor identity.Actor, userID uuid.UUID, templateName string) (*MemberResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermMemberUpdatePerms); err != nil {
		return nil, err
	}

	tmpl, ok := identity.GetRoleTemplate(templateName)
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_TEMPLATE", fmt.Sprintf("Unknown role template %q", templateName))
	}

	membership, err := s.memberships.FindByUser(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := membership.ApplyTemplate(tmpl); err != nil {
		return nil, err
	}

	if err := s.memberships.SaveWithLock(ctx, membership); err != nil {
		return nil, err
	}

	s.recordChange(ctx, actor, membership, fmt.Sprintf("Applied role template %s", templateName))
	s.publishEvents(ctx, membership)

	resp := ToMemberResponse(membership)
	return &resp, nil
}

// GetMember returns one membership
func (s *MemberService) GetMember(ctx context.Context, actor identity.Actor, userID uuid.UUID) (*MemberResponse, error) {
	membership, err := s.memberships.FindByUser(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}
	resp := ToMemberResponse(membership)
	return &resp, nil
}

// ListMembers lists the tenant's memberships
func (s *MemberService) ListMembers(ctx context.Context, actor identity.Actor, filter shared.Filter) (shared.Paginated[MemberResponse], error) {
	page, err := s.memberships.List(ctx, actor.TenantID, filter)
	if err != nil {
		return shared.Paginated[MemberResponse]{}, err
	}

	items := make([]MemberResponse, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, ToMemberResponse(m))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

func (s *MemberService) recordChange(ctx context.Context, actor identity.Actor, membership *identity.Membership, description string) {
	entry, err := activity.NewEntry(actor.TenantID, membership.ID, actor.UserID, activity.EntryTypeMemberChanged, description, activity.Metadata{
		"user_id": membership.UserID.String(),
		"role":    membership.Role.String(),
	})
	if err != nil {
		return
	}
	_ = s.activities.Save(ctx, entry)
}

func (s *MemberService) publishEvents(ctx context.Context, membership *identity.Membership) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, membership.GetDomainEvents()...)
	membership.ClearDomainEvents()
}
