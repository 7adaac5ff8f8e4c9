package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
)

// Tenant represents an isolated organization. Every other entity in the
// system belongs to exactly one tenant; cross-tenant reads or writes are
// never valid.
type Tenant struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"size:200;not null"`
	Slug     string `gorm:"size:100;not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NewTenant creates a new tenant
func NewTenant(name, slug string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 200 characters")
	}
	if err := validateTenantSlug(slug); err != nil {
		return nil, err
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		IsActive:          true,
	}, nil
}

// Rename sets the tenant display name
func (t *Tenant) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Deactivate disables the tenant; the storefront gateway rejects inactive tenants
func (t *Tenant) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate re-enables the tenant
func (t *Tenant) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func validateTenantSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_TENANT_SLUG", "Tenant slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_TENANT_SLUG", "Tenant slug cannot exceed 100 characters")
	}
	if !slugRegex.MatchString(slug) {
		return shared.NewDomainError("INVALID_TENANT_SLUG", "Tenant slug must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}
