package identity

import (
	"time"

	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/google/uuid"
)

// MemberResponse is the read model for a membership
type MemberResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToMemberResponse converts a membership to its read model.
// Admin permission sets are reported as empty; the role field is the signal.
func ToMemberResponse(m *identity.Membership) MemberResponse {
	perms := make([]string, len(m.Permissions))
	for i, p := range m.Permissions {
		perms[i] = string(p)
	}
	return MemberResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Role:        m.Role.String(),
		Permissions: perms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// RoleTemplateResponse is the read model for a role template
type RoleTemplateResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// ListTemplates returns all known role templates
func ListTemplates() []RoleTemplateResponse {
	templates := identity.ListRoleTemplates()
	out := make([]RoleTemplateResponse, 0, len(templates))
	for _, tmpl := range templates {
		perms := make([]string, len(tmpl.Permissions))
		for i, p := range tmpl.Permissions {
			perms[i] = string(p)
		}
		out = append(out, RoleTemplateResponse{
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Permissions: perms,
		})
	}
	return out
}
