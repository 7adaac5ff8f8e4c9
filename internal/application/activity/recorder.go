package activity

import (
	"context"
	"time"

	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder is the append-only audit log. Mutations inside a transaction
// write entries through their transaction scope; this service covers
// standalone writes, queries, and the retention purge.
type Recorder struct {
	entries   activity.Repository
	logger    *zap.Logger
	retention time.Duration
}

// NewRecorder creates a new Recorder
func NewRecorder(entries activity.Repository, logger *zap.Logger, retention time.Duration) *Recorder {
	return &Recorder{
		entries:   entries,
		logger:    logger,
		retention: retention,
	}
}

// Record appends one audit entry
func (r *Recorder) Record(ctx context.Context, tenantID, subjectID, actorID uuid.UUID, entryType activity.EntryType, description string, metadata activity.Metadata) (*activity.Entry, error) {
	entry, err := activity.NewEntry(tenantID, subjectID, actorID, entryType, description, metadata)
	if err != nil {
		return nil, err
	}
	if err := r.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListBySubject returns the audit trail of one entity, newest first
func (r *Recorder) ListBySubject(ctx context.Context, tenantID, subjectID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	return r.entries.ListBySubject(ctx, tenantID, subjectID, filter)
}

// List returns a page of the tenant's audit trail
func (r *Recorder) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*activity.Entry], error) {
	return r.entries.List(ctx, tenantID, filter)
}

// CleanupOldActivities removes entries past the retention horizon. It runs
// on a schedule and needs no coordination with the mutating paths.
func (r *Recorder) CleanupOldActivities(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-r.retention)
	removed, err := r.entries.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.logger.Error("activity purge failed", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("purged old activity entries",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
