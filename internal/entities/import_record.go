package entities

import "time"

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportRecord tracks one uploaded or CLI-imported document. It is written
// outside the board import transaction so a failed import still leaves a trace.
type ImportRecord struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FileName    string       `gorm:"size:255" json:"file_name"`
	StorageKey  string       `gorm:"size:512" json:"storage_key,omitempty"`
	Origin      string       `gorm:"size:20" json:"origin"` // "upload" or "cli"
	Status      ImportStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	TaskID      string       `gorm:"size:64" json:"task_id,omitempty"`
	Attempts    int          `gorm:"default:0" json:"attempts"` // queued runs started so far
	BoardID     *uint        `gorm:"index" json:"board_id,omitempty"`
	BoardName   string       `gorm:"size:255" json:"board_name,omitempty"`
	Stats       string       `gorm:"type:text" json:"stats,omitempty"`       // JSON import counts
	Diagnostics string       `gorm:"type:text" json:"diagnostics,omitempty"` // JSON array of skipped references
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (ImportRecord) TableName() string {
	return "import_records"
}
