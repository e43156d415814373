package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/audit"
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
	"github.com/mrlokans/ipcboard/internal/uploads"
)

const (
	OriginUpload = "upload"
	OriginCLI    = "cli"
)

// MaxImportAttempts is how many times a queued import may run before a
// storage failure is recorded as final.
const MaxImportAttempts = 3

// ErrQueueDisabled is returned for asynchronous uploads when no task queue runs.
var ErrQueueDisabled = errors.New("task queue is disabled")

// UploadRequest is one document received over HTTP.
type UploadRequest struct {
	FileName  string
	Body      io.Reader
	IPAddress string
	UserAgent string
}

// Outcome pairs the import history entry with the importer's result.
type Outcome struct {
	Record *entities.ImportRecord `json:"record"`
	Result *importers.Result      `json:"result"`
}

// ImportService stores uploaded documents, runs the board importer on them and
// keeps the import history and audit trail in step.
type ImportService struct {
	records  ImportRecords
	uploads  uploads.Store
	importer *importers.Importer
	auditor  Auditor
	queue    ImportQueue
	log      *zap.Logger

	maxAttempts int
}

func NewImportService(records ImportRecords, store uploads.Store, importer *importers.Importer, auditor Auditor, log *zap.Logger) *ImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportService{
		records:  records,
		uploads:  store,
		importer: importer,
		auditor:  auditor,
		log:      log,

		maxAttempts: MaxImportAttempts,
	}
}

// SetQueue enables asynchronous uploads. The queue is created after the
// service because its workers call back into ProcessImport.
func (s *ImportService) SetQueue(queue ImportQueue) {
	s.queue = queue
}

// Upload stores the document and imports it before returning.
func (s *ImportService) Upload(ctx context.Context, req UploadRequest) (*Outcome, error) {
	record, err := s.store(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, record, func() (io.ReadCloser, error) {
		return s.uploads.Open(ctx, record.StorageKey)
	}, req)
	if err != nil {
		return &Outcome{Record: record}, err
	}
	return &Outcome{Record: record, Result: result}, nil
}

// UploadAsync stores the document and queues its import.
func (s *ImportService) UploadAsync(ctx context.Context, req UploadRequest) (*entities.ImportRecord, error) {
	if s.queue == nil {
		return nil, ErrQueueDisabled
	}

	record, err := s.store(ctx, req)
	if err != nil {
		return nil, err
	}

	taskID, err := s.queue.EnqueueImport(record.ID)
	if err != nil {
		s.fail(ctx, record, err)
		return nil, err
	}
	if err := s.records.SetTaskID(ctx, record.ID, taskID); err != nil {
		return nil, fmt.Errorf("failed to save task id: %w", err)
	}
	record.TaskID = taskID

	s.log.Info("import queued",
		zap.Uint("import_id", record.ID),
		zap.String("task_id", taskID),
		zap.String("file", record.FileName))
	return record, nil
}

// ProcessImport runs a queued import. Import failures are stored on the record
// and reported as success to the queue; only errors that a retry could fix are
// returned. Such errors leave the record pending until the final attempt,
// which records the failure.
func (s *ImportService) ProcessImport(ctx context.Context, recordID uint) error {
	record, err := s.records.Get(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to load import %d: %w", recordID, err)
	}
	if record.Status == entities.ImportStatusCompleted || record.Status == entities.ImportStatusFailed {
		s.log.Info("import already finished, skipping", zap.Uint("import_id", record.ID))
		return nil
	}

	if err := s.records.RecordAttempt(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to record attempt of import %d: %w", record.ID, err)
	}
	record.Attempts++
	req := UploadRequest{FileName: record.FileName}

	rc, openErr := s.uploads.Open(ctx, record.StorageKey)
	if openErr != nil && !errors.Is(openErr, uploads.ErrNotFound) {
		if record.Attempts < s.maxAttempts {
			s.log.Warn("upload not readable, import will be retried",
				zap.Uint("import_id", record.ID),
				zap.Int("attempt", record.Attempts),
				zap.Error(openErr))
			return fmt.Errorf("failed to open upload of import %d: %w", record.ID, openErr)
		}
		s.log.Error("upload not readable, giving up",
			zap.Uint("import_id", record.ID),
			zap.Int("attempt", record.Attempts),
			zap.Error(openErr))
	}
	if rc != nil {
		defer rc.Close()
	}

	_, err = s.run(ctx, record, func() (io.ReadCloser, error) {
		if openErr != nil {
			return nil, openErr
		}
		return io.NopCloser(rc), nil
	}, req)
	if err != nil && errors.Is(err, errRecordUpdate) {
		return err
	}
	return nil
}

// ImportFile imports a document from the local file system. The upload store
// is not involved.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*Outcome, error) {
	record := &entities.ImportRecord{FileName: filepath.Base(path), Origin: OriginCLI}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}

	result, err := s.run(ctx, record, func() (io.ReadCloser, error) {
		return os.Open(path)
	}, UploadRequest{FileName: record.FileName})
	if err != nil {
		return &Outcome{Record: record}, err
	}
	return &Outcome{Record: record, Result: result}, nil
}

// Preview reports what importing the document would store without keeping
// anything.
func (s *ImportService) Preview(ctx context.Context, r io.Reader) (*importers.Result, error) {
	doc, err := ipc2581.Parse(r)
	if err != nil {
		return nil, err
	}
	return s.importer.Preview(ctx, doc)
}

func (s *ImportService) GetImport(ctx context.Context, id uint) (*entities.ImportRecord, error) {
	return s.records.Get(ctx, id)
}

func (s *ImportService) ListImports(ctx context.Context, limit, offset int) ([]entities.ImportRecord, int64, error) {
	return s.records.List(ctx, limit, offset)
}

// PurgeUploads deletes stored documents of imports finished before now minus
// olderThan. It returns how many were removed.
func (s *ImportService) PurgeUploads(ctx context.Context, olderThan time.Duration) (int, error) {
	records, err := s.records.FindPurgeable(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to find expired uploads: %w", err)
	}

	removed := 0
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.uploads.Delete(ctx, record.StorageKey); err != nil {
			s.log.Warn("failed to delete upload",
				zap.Uint("import_id", record.ID),
				zap.String("key", record.StorageKey),
				zap.Error(err))
			continue
		}
		if err := s.records.ClearStorageKey(ctx, record.ID); err != nil {
			return removed, fmt.Errorf("failed to update import %d: %w", record.ID, err)
		}
		removed++
	}

	if s.auditor != nil {
		s.auditor.LogMaintenance(entities.AuditActionCleanupUploads, fmt.Sprintf("Removed %d stored uploads", removed), nil)
	}
	return removed, nil
}

func (s *ImportService) store(ctx context.Context, req UploadRequest) (*entities.ImportRecord, error) {
	key, err := s.uploads.Save(ctx, req.FileName, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	record := &entities.ImportRecord{
		FileName:   req.FileName,
		StorageKey: key,
		Origin:     OriginUpload,
	}
	if err := s.records.Create(ctx, record); err != nil {
		if delErr := s.uploads.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}
	return record, nil
}

var errRecordUpdate = errors.New("failed to update import record")

// run parses and imports one document while keeping the record current.
func (s *ImportService) run(ctx context.Context, record *entities.ImportRecord, open func() (io.ReadCloser, error), req UploadRequest) (*importers.Result, error) {
	log := s.log.With(zap.Uint("import_id", record.ID), zap.String("file", record.FileName))

	now := time.Now()
	if err := s.records.MarkRunning(ctx, record.ID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", errRecordUpdate, err)
	}
	record.Status = entities.ImportStatusRunning
	record.StartedAt = &now

	result, err := s.importDocument(ctx, open)
	if err != nil {
		log.Warn("import failed", zap.Error(err))
		s.fail(ctx, record, err)
		s.audit(req, record, nil, err)
		return nil, err
	}

	// Neither value can fail to marshal.
	stats, _ := json.Marshal(result.Stats)
	diagnostics, _ := json.Marshal(result.Diagnostics)

	done := time.Now()
	if err := s.records.MarkCompleted(ctx, record.ID, result.BoardID, result.BoardName, string(stats), string(diagnostics), done); err != nil {
		// The board is committed; a stale history entry must not turn it into a failure.
		log.Error("failed to mark import completed", zap.Error(err))
	}
	boardID := result.BoardID
	record.Status = entities.ImportStatusCompleted
	record.BoardID = &boardID
	record.BoardName = result.BoardName
	record.Stats = string(stats)
	record.Diagnostics = string(diagnostics)
	record.CompletedAt = &done

	s.audit(req, record, result, nil)
	return result, nil
}

func (s *ImportService) importDocument(ctx context.Context, open func() (io.ReadCloser, error)) (*importers.Result, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := ipc2581.Parse(rc)
	if err != nil {
		return nil, err
	}
	return s.importer.Import(ctx, doc)
}

// fail marks the record failed. It runs on a fresh context so a cancelled
// request still leaves the failure recorded.
func (s *ImportService) fail(ctx context.Context, record *entities.ImportRecord, cause error) {
	now := time.Now()
	ctx = context.WithoutCancel(ctx)
	if err := s.records.MarkFailed(ctx, record.ID, cause.Error(), now); err != nil {
		s.log.Error("failed to mark import failed", zap.Uint("import_id", record.ID), zap.Error(err))
		return
	}
	record.Status = entities.ImportStatusFailed
	record.Error = cause.Error()
	record.CompletedAt = &now
}

func (s *ImportService) audit(req UploadRequest, record *entities.ImportRecord, result *importers.Result, err error) {
	if s.auditor == nil {
		return
	}
	entry := audit.ImportEntry{
		Origin:    record.Origin,
		FileName:  record.FileName,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Err:       err,
	}
	if result != nil {
		entry.BoardID = result.BoardID
		entry.BoardName = result.BoardName
		entry.Stats = result.Stats
		entry.Diagnostics = len(result.Diagnostics)
	}
	s.auditor.LogImport(entry)
}
