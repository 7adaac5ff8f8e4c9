package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Save appends an audit entry
func (r *GormActivityRepository) Save(ctx context.Context, entry *activity.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID finds an entry by ID within a tenant
func (r *GormActivityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*activity.Entry, error) {
	var entry activity.Entry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListBySubject returns the audit trail of one subject, newest first
func (r *GormActivityRepository) ListBySubject(ctx context.Context, tenantID, subjectID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	query := r.db.WithContext(ctx).Model(&activity.Entry{}).
		Where("tenant_id = ? AND subject_id = ?", tenantID, subjectID)
	return r.paginate(query, filter)
}

// List returns audit entries for a tenant
func (r *GormActivityRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	query := r.db.WithContext(ctx).Model(&activity.Entry{}).
		Where("tenant_id = ?", tenantID)
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		}
	}
	return r.paginate(query, filter)
}

// DeleteOlderThan removes entries created before the cutoff across all
// tenants. Returns the number of rows purged.
func (r *GormActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&activity.Entry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormActivityRepository) paginate(query *gorm.DB, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*activity.Entry]{}, err
	}

	var entries []*activity.Entry
	query = applySort(query, filter, CommonSortFields)
	query = applyPagination(query, filter)
	if err := query.Find(&entries).Error; err != nil {
		return shared.Paginated[*activity.Entry]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.PageSize), nil
}

var _ activity.Repository = (*GormActivityRepository)(nil)
