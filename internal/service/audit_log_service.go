package service

import (
	"context"
	"fmt"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entity types recorded in the audit trail
const (
	EntityUser     = "user"
	EntityCustomer = "customer"
	EntityContract = "contract"
	EntityEvent    = "event"
)

// AuditLogService handles audit logging operations
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// LogEntry represents the input for creating an audit log entry
type LogEntry struct {
	Action     domain.AuditAction
	Outcome    domain.AuditOutcome
	EntityType string
	EntityID   *uuid.UUID
	EntityName string
	Detail     string
}

// Log creates an audit log entry for the user bound to ctx.
// Audit failures are logged, never returned: they must not undo the audited action.
func (s *AuditLogService) Log(ctx context.Context, entry LogEntry) {
	if entry.Outcome == "" {
		entry.Outcome = domain.AuditOutcomeSuccess
	}
	s.Record(ctx, &domain.AuditLog{
		Action:     entry.Action,
		Outcome:    entry.Outcome,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Detail:     entry.Detail,
	})
}

// Record stores a prepared audit entry, filling the actor from ctx when missing
func (s *AuditLogService) Record(ctx context.Context, log *domain.AuditLog) {
	if log.UserID == "" {
		if user, ok := auth.UserFromContext(ctx); ok {
			log.UserID = user.ID.String()
			log.UserEmail = user.Email
		}
	}
	if log.PerformedAt.IsZero() {
		log.PerformedAt = s.now()
	}

	if err := s.auditRepo.Create(ctx, log); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(log.Action)),
			zap.String("entity_type", log.EntityType),
			zap.Error(err))
	}
}

// LogCreate logs a successful create operation
func (s *AuditLogService) LogCreate(ctx context.Context, entityType string, entityID uuid.UUID, entityName string) {
	s.Log(ctx, LogEntry{Action: domain.AuditActionCreate, EntityType: entityType, EntityID: &entityID, EntityName: entityName})
}

// LogUpdate logs a successful update operation
func (s *AuditLogService) LogUpdate(ctx context.Context, entityType string, entityID uuid.UUID, entityName, detail string) {
	s.Log(ctx, LogEntry{Action: domain.AuditActionUpdate, EntityType: entityType, EntityID: &entityID, EntityName: entityName, Detail: detail})
}

// LogDelete logs a delete operation with its outcome
func (s *AuditLogService) LogDelete(ctx context.Context, entityType string, entityID *uuid.UUID, entityName string, cause error) {
	entry := LogEntry{Action: domain.AuditActionDelete, EntityType: entityType, EntityID: entityID, EntityName: entityName}
	if cause != nil {
		entry.Outcome = domain.AuditOutcomeFailure
		entry.Detail = cause.Error()
	}
	s.Log(ctx, entry)
}

// List returns recent audit entries matching filter
func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, limit int) ([]domain.AuditLog, error) {
	logs, err := s.auditRepo.List(ctx, filter, limit)
	if err != nil {
		return nil, storageError("list audit logs", err)
	}
	return logs, nil
}

// Purge removes entries older than retention
func (s *AuditLogService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", ErrInvalidInput)
	}
	cutoff := s.now().Add(-retention)
	removed, err := s.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, storageError("purge audit logs", err)
	}
	s.logger.Info("Audit logs purged",
		zap.Int64("removed", removed),
		zap.Time("cutoff", cutoff),
	)
	return removed, nil
}
