package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// UploadCleaner removes stored upload files of finished imports.
type UploadCleaner interface {
	PurgeUploads(ctx context.Context, olderThan time.Duration) (int, error)
}

// CleanupUploadsTask deletes uploaded documents whose import finished longer
// ago than Retention. The import records themselves are kept.
type CleanupUploadsTask struct {
	Retention time.Duration `json:"retention"`
}

func (t CleanupUploadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_uploads",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupUploadsProcessor(cleaner UploadCleaner, log *zap.Logger) backlite.QueueProcessor[CleanupUploadsTask] {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, task CleanupUploadsTask) error {
		if cleaner == nil {
			return fmt.Errorf("upload cleaner not configured")
		}
		if task.Retention <= 0 {
			log.Debug("upload retention disabled, nothing to clean")
			return nil
		}

		removed, err := cleaner.PurgeUploads(ctx, task.Retention)
		if err != nil {
			return fmt.Errorf("cleanup uploads: %w", err)
		}

		log.Info("cleaned up uploads",
			zap.Int("removed", removed),
			zap.Duration("retention", task.Retention))
		return nil
	}
}

func NewCleanupUploadsQueue(cleaner UploadCleaner, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupUploadsProcessor(cleaner, log))
}
