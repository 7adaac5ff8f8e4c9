package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Role represents the coarse-grained role of a membership
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role must be admin, manager or staff")
	}
	return r, nil
}

// PermissionKey is a granular permission in "module:action" form,
// e.g. "inventory:adjust" or "order:update_status".
type PermissionKey string

var permissionKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*:[a-z][a-z0-9_]*$`)

// ParsePermissionKey validates and normalizes a permission key string
func ParsePermissionKey(s string) (PermissionKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !permissionKeyRegex.MatchString(s) {
		return "", shared.NewDomainError("INVALID_PERMISSION_KEY", "Permission key must be in 'module:action' form")
	}
	return PermissionKey(s), nil
}

// Module returns the module part of the key
func (k PermissionKey) Module() string {
	parts := strings.SplitN(string(k), ":", 2)
	return parts[0]
}

// Permission keys consulted by the engine's mutating operations
const (
	PermInventoryAdjust       PermissionKey = "inventory:adjust"
	PermInventoryRestock      PermissionKey = "inventory:restock"
	PermOrderCreate           PermissionKey = "order:create"
	PermOrderUpdateStatus     PermissionKey = "order:update_status"
	PermProductCreate         PermissionKey = "product:create"
	PermProductUpdate         PermissionKey = "product:update"
	PermProductImport         PermissionKey = "product:import"
	PermCategoryManage        PermissionKey = "category:manage"
	PermMemberUpdateRole      PermissionKey = "member:update_role"
	PermMemberUpdatePerms     PermissionKey = "member:update_permissions"
	PermChatSend              PermissionKey = "chat:send"
	PermChatView              PermissionKey = "chat:view"
	PermActivityView          PermissionKey = "activity:view"
	PermCustomerManage        PermissionKey = "customer:manage"
	PermOrderRead             PermissionKey = "order:read"
	PermInventoryViewHistory  PermissionKey = "inventory:view_history"
)

// Authorization is the effective permission set of a caller. It is a tagged
// variant: admins hold everything by construction, non-admins hold exactly
// their stored granular set. An admin's set is computed, never stored.
type Authorization interface {
	Allows(key PermissionKey) bool
}

// AdminAuthorization allows every permission
type AdminAuthorization struct{}

// Allows always returns true
func (AdminAuthorization) Allows(PermissionKey) bool { return true }

// ScopedAuthorization allows exactly the keys in its set
type ScopedAuthorization struct {
	keys map[PermissionKey]struct{}
}

// NewScopedAuthorization builds a scoped authorization from a key list
func NewScopedAuthorization(keys []PermissionKey) ScopedAuthorization {
	set := make(map[PermissionKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return ScopedAuthorization{keys: set}
}

// Allows reports whether the key is in the stored set
func (a ScopedAuthorization) Allows(key PermissionKey) bool {
	_, ok := a.keys[key]
	return ok
}

// Membership links a user to a tenant with a role and a granular permission
// set. It is the aggregate root for authorization changes.
type Membership struct {
	shared.TenantAggregateRoot
	UserID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_membership_tenant_user,priority:2"`
	Role        Role            `gorm:"size:20;not null"`
	Permissions []PermissionKey `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// NewMembership creates a new membership
func NewMembership(tenantID, userID uuid.UUID, role Role) (*Membership, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be one of admin, manager, staff")
	}

	m := &Membership{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Role:                role,
		Permissions:         make([]PermissionKey, 0),
	}

	m.AddDomainEvent(NewMembershipCreatedEvent(m))

	return m, nil
}

// IsAdmin returns true for admin memberships
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Authorization computes the effective authorization for this membership.
// Admins get AdminAuthorization; everyone else gets exactly the stored set.
func (m *Membership) Authorization() Authorization {
	if m.IsAdmin() {
		return AdminAuthorization{}
	}
	return NewScopedAuthorization(m.Permissions)
}

// ChangeRole changes the membership role. Promoting to admin clears the
// stored granular set since an admin's effective set is computed.
func (m *Membership) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be one of admin, manager, staff")
	}
	if role == m.Role {
		return nil
	}

	previous := m.Role
	m.Role = role
	if role == RoleAdmin {
		m.Permissions = make([]PermissionKey, 0)
	}
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberRoleChangedEvent(m, previous))

	return nil
}

// SetPermissions replaces the stored granular permission set. An admin's set
// is not independently editable.
func (m *Membership) SetPermissions(keys []PermissionKey) error {
	if m.IsAdmin() {
		return shared.NewDomainError("VALIDATION_ERROR", "An admin membership's permission set is implicit and cannot be edited")
	}

	seen := make(map[PermissionKey]struct{}, len(keys))
	unique := make([]PermissionKey, 0, len(keys))
	for _, k := range keys {
		parsed, err := ParsePermissionKey(string(k))
		if err != nil {
			return err
		}
		if _, dup := seen[parsed]; dup {
			continue
		}
		seen[parsed] = struct{}{}
		unique = append(unique, parsed)
	}

	m.Permissions = unique
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberPermissionsChangedEvent(m))

	return nil
}

// ApplyTemplate overwrites the permission set with the template's bundle.
// This is a bulk assignment, not an additive merge.
func (m *Membership) ApplyTemplate(tmpl RoleTemplate) error {
	return m.SetPermissions(tmpl.Permissions)
}

// HasPermission reports whether the effective set allows the key
func (m *Membership) HasPermission(key PermissionKey) bool {
	return m.Authorization().Allows(key)
}
