package repository

import (
	"context"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"gorm.io/gorm"
)

// AuditLogFilter represents filter options for querying audit logs
type AuditLogFilter struct {
	UserID     string
	Action     *domain.AuditAction
	Outcome    *domain.AuditOutcome
	EntityType string
	StartTime  *time.Time
	EndTime    *time.Time
}

// AuditLogRepository handles audit log data access
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts a new audit log entry (append-only - no updates allowed)
func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List retrieves the most recent audit logs matching filter
func (r *AuditLogRepository) List(ctx context.Context, filter *AuditLogFilter, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.AuditLog{}), filter)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("performed_at DESC").Find(&logs).Error
	return logs, err
}

// DeleteOlderThan purges entries performed before cutoff and returns how many were removed
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("performed_at < ?", cutoff).Delete(&domain.AuditLog{})
	return res.RowsAffected, res.Error
}

func (r *AuditLogRepository) applyFilters(query *gorm.DB, filter *AuditLogFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.StartTime != nil {
		query = query.Where("performed_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("performed_at <= ?", *filter.EndTime)
	}
	return query
}
