package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/entities"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditEventCleaner prunes the audit trail and records that it did.
// Implemented by audit.Service.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogMaintenance(action, description string, err error)
}

// CleanupAuditEventsTask prunes import and maintenance events older than
// RetentionDays. The pruning run itself is recorded as a maintenance event.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        entities.AuditActionCleanupAudit,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, log *zap.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = DefaultAuditRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			cleaner.LogMaintenance(entities.AuditActionCleanupAudit, fmt.Sprintf("Pruning audit events older than %d days failed", days), err)
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		cleaner.LogMaintenance(entities.AuditActionCleanupAudit,
			fmt.Sprintf("Pruned %d audit events older than %d days", deleted, days), nil)
		log.Info("pruned audit events",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", days))
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, log))
}
