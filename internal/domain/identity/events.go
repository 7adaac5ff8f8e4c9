package identity

import (
	"github.com/commerce/backoffice/internal/domain/shared"
)

// Event types for the identity domain
const (
	EventMembershipCreated        = "identity.membership.created"
	EventMemberRoleChanged        = "identity.member.role_changed"
	EventMemberPermissionsChanged = "identity.member.permissions_changed"
)

// MembershipCreatedEvent is emitted when a user is added to a tenant
type MembershipCreatedEvent struct {
	shared.BaseDomainEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// NewMembershipCreatedEvent creates a new membership created event
func NewMembershipCreatedEvent(m *Membership) *MembershipCreatedEvent {
	return &MembershipCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventMembershipCreated, "Membership", m.ID, m.TenantID),
		UserID:          m.UserID.String(),
		Role:            m.Role.String(),
	}
}

// MemberRoleChangedEvent is emitted when a membership's role changes
type MemberRoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID       string `json:"user_id"`
	PreviousRole string `json:"previous_role"`
	NewRole      string `json:"new_role"`
}

// NewMemberRoleChangedEvent creates a new role changed event
func NewMemberRoleChangedEvent(m *Membership, previous Role) *MemberRoleChangedEvent {
	return &MemberRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventMemberRoleChanged, "Membership", m.ID, m.TenantID),
		UserID:          m.UserID.String(),
		PreviousRole:    previous.String(),
		NewRole:         m.Role.String(),
	}
}

// MemberPermissionsChangedEvent is emitted when a granular set is replaced
type MemberPermissionsChangedEvent struct {
	shared.BaseDomainEvent
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

// NewMemberPermissionsChangedEvent creates a new permissions changed event
func NewMemberPermissionsChangedEvent(m *Membership) *MemberPermissionsChangedEvent {
	perms := make([]string, len(m.Permissions))
	for i, p := range m.Permissions {
		perms[i] = string(p)
	}
	return &MemberPermissionsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventMemberPermissionsChanged, "Membership", m.ID, m.TenantID),
		UserID:          m.UserID.String(),
		Permissions:     perms,
	}
}
