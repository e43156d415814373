package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/ipcboard/internal/services"
)

// DocumentImporter runs the import recorded under an ImportRecord id. It
// returns an error only when the attempt should be retried; import failures
// are stored on the record itself.
type DocumentImporter interface {
	ProcessImport(ctx context.Context, recordID uint) error
}

// ImportDocumentTask imports one previously uploaded document.
type ImportDocumentTask struct {
	RecordID uint `json:"record_id"`
}

func (t ImportDocumentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_document",
		MaxAttempts: services.MaxImportAttempts,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func ImportDocumentProcessor(importer DocumentImporter) backlite.QueueProcessor[ImportDocumentTask] {
	return func(ctx context.Context, task ImportDocumentTask) error {
		if importer == nil {
			return fmt.Errorf("document importer not configured")
		}
		if task.RecordID == 0 {
			return fmt.Errorf("import task without record id")
		}
		return importer.ProcessImport(ctx, task.RecordID)
	}
}

func NewImportDocumentQueue(importer DocumentImporter) backlite.Queue {
	return backlite.NewQueue(ImportDocumentProcessor(importer))
}

// EnqueueImport queues the import of a stored upload.
func (c *Client) EnqueueImport(recordID uint) (string, error) {
	return c.Enqueue(ImportDocumentTask{RecordID: recordID})
}
