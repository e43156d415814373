// Package imports stores the history of document imports.
package imports

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/ipcboard/internal/entities"
)

var ErrNotFound = errors.New("import record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *entities.ImportRecord) error {
	if record.Status == "" {
		record.Status = entities.ImportStatusPending
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Get(ctx context.Context, id uint) (*entities.ImportRecord, error) {
	var record entities.ImportRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns records newest first together with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.ImportRecord, int64, error) {
	var records []entities.ImportRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.ImportRecord{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

func (r *Repository) SetTaskID(ctx context.Context, id uint, taskID string) error {
	return r.update(ctx, id, map[string]any{"task_id": taskID})
}

// RecordAttempt counts one more queued run of the import.
func (r *Repository) RecordAttempt(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]any{"attempts": gorm.Expr("attempts + 1")})
}

func (r *Repository) MarkRunning(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":     entities.ImportStatusRunning,
		"started_at": at,
		"error":      "",
	})
}

// MarkCompleted stores the outcome of a successful import. stats and
// diagnostics are JSON documents.
func (r *Repository) MarkCompleted(ctx context.Context, id, boardID uint, boardName, stats, diagnostics string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":       entities.ImportStatusCompleted,
		"board_id":     boardID,
		"board_name":   boardName,
		"stats":        stats,
		"diagnostics":  diagnostics,
		"error":        "",
		"completed_at": at,
	})
}

func (r *Repository) MarkFailed(ctx context.Context, id uint, errMsg string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":       entities.ImportStatusFailed,
		"error":        errMsg,
		"completed_at": at,
	})
}

// FindPurgeable returns finished records that still reference an upload and
// completed before the cutoff.
func (r *Repository) FindPurgeable(ctx context.Context, before time.Time) ([]entities.ImportRecord, error) {
	var records []entities.ImportRecord
	err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.ImportStatus{entities.ImportStatusCompleted, entities.ImportStatusFailed}).
		Where("storage_key <> ''").
		Where("completed_at < ?", before).
		Order("id").
		Find(&records).Error
	return records, err
}

func (r *Repository) ClearStorageKey(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]any{"storage_key": ""})
}

func (r *Repository) update(ctx context.Context, id uint, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.ImportRecord{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
