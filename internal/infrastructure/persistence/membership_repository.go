package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMembershipRepository implements MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

// SaveWithLock updates a membership with optimistic locking. Role and
// permission changes race with each other; last writer must lose.
func (r *GormMembershipRepository) SaveWithLock(ctx context.Context, membership *identity.Membership) error {
	// Struct-based Updates so the permissions JSON serializer applies
	result := r.db.WithContext(ctx).
		Model(&identity.Membership{}).
		Where("tenant_id = ? AND id = ? AND version = ?", membership.TenantID, membership.ID, membership.Version-1).
		Select("role", "permissions", "version", "updated_at").
		Updates(membership)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a membership by ID within a tenant
func (r *GormMembershipRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// FindByUser finds the membership of a user within a tenant
func (r *GormMembershipRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// List returns memberships for a tenant
func (r *GormMembershipRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*identity.Membership], error) {
	query := r.db.WithContext(ctx).Model(&identity.Membership{}).Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		if key == "role" {
			query = query.Where("role = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*identity.Membership]{}, err
	}

	var memberships []*identity.Membership
	query = applySort(query, filter, CommonSortFields)
	query = applyPagination(query, filter)
	if err := query.Find(&memberships).Error; err != nil {
		return shared.Paginated[*identity.Membership]{}, err
	}
	return shared.NewPaginated(memberships, total, filter.Page, filter.PageSize), nil
}

// CountAdmins counts admin memberships within a tenant
func (r *GormMembershipRepository) CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Membership{}).
		Where("tenant_id = ? AND role = ?", tenantID, identity.RoleAdmin).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ identity.MembershipRepository = (*GormMembershipRepository)(nil)
