package identity

import (
	"github.com/google/uuid"
)

// Actor identifies who performs an operation. It is resolved from the
// authenticated request before any service call; domain services never
// consult request state directly.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
}

// SystemActor returns an actor used for scheduled and internal operations
func SystemActor(tenantID uuid.UUID) Actor {
	return Actor{
		UserID:   uuid.Nil,
		TenantID: tenantID,
		Role:     RoleAdmin,
	}
}

// IsSystem reports whether the actor is the internal system actor
func (a Actor) IsSystem() bool {
	return a.UserID == uuid.Nil
}
