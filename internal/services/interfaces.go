package services

import (
	"context"
	"time"

	"github.com/mrlokans/ipcboard/internal/audit"
	"github.com/mrlokans/ipcboard/internal/entities"
)

// ImportRecords persists the import history.
// Implemented by database/imports.Repository.
type ImportRecords interface {
	Create(ctx context.Context, record *entities.ImportRecord) error
	Get(ctx context.Context, id uint) (*entities.ImportRecord, error)
	List(ctx context.Context, limit, offset int) ([]entities.ImportRecord, int64, error)
	SetTaskID(ctx context.Context, id uint, taskID string) error
	RecordAttempt(ctx context.Context, id uint) error
	MarkRunning(ctx context.Context, id uint, at time.Time) error
	MarkCompleted(ctx context.Context, id, boardID uint, boardName, stats, diagnostics string, at time.Time) error
	MarkFailed(ctx context.Context, id uint, errMsg string, at time.Time) error
	FindPurgeable(ctx context.Context, before time.Time) ([]entities.ImportRecord, error)
	ClearStorageKey(ctx context.Context, id uint) error
}

// ImportQueue hands a stored upload to a background worker and returns the
// task id. Implemented by tasks.Client.
type ImportQueue interface {
	EnqueueImport(recordID uint) (string, error)
}

// Auditor receives import and maintenance outcomes.
// Implemented by audit.Service.
type Auditor interface {
	LogImport(entry audit.ImportEntry)
	LogMaintenance(action, description string, err error)
}
