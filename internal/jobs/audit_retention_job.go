package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditRetentionJobName is the name of the audit trail purge job
const AuditRetentionJobName = "audit_retention"

// AuditPurger removes audit entries older than a retention period
type AuditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditRetentionJob trims the audit trail to the configured retention
type AuditRetentionJob struct {
	purger    AuditPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAuditRetentionJob creates the purge job. The timeout bounds one run.
func NewAuditRetentionJob(purger AuditPurger, retention, timeout time.Duration, logger *zap.Logger) *AuditRetentionJob {
	return &AuditRetentionJob{
		purger:    purger,
		retention: retention,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run purges expired audit entries. Failures are logged; the next run retries.
func (j *AuditRetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.purger.Purge(ctx, j.retention)
	if err != nil {
		j.logger.Error("audit retention job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("audit retention job completed",
		zap.Int64("removed", removed),
		zap.Duration("retention", j.retention),
		zap.Duration("duration", time.Since(start)))
}

// RegisterAuditRetentionJob adds the purge job to scheduler under cronExpr
func RegisterAuditRetentionJob(scheduler *Scheduler, purger AuditPurger, retention time.Duration, cronExpr string, logger *zap.Logger) error {
	job := NewAuditRetentionJob(purger, retention, time.Minute, logger)
	return scheduler.AddJob(AuditRetentionJobName, cronExpr, job.Run)
}
