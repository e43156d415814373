package entities

import "time"

// AuditEventType groups audit events: board imports, and the maintenance
// runs that prune old events and stored uploads.
type AuditEventType string

const (
	AuditEventImport      AuditEventType = "import"
	AuditEventMaintenance AuditEventType = "maintenance"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEntityBoard marks events whose EntityID is a board id.
const AuditEntityBoard = "board"

// Maintenance actions.
const (
	AuditActionCleanupUploads = "cleanup_uploads"
	AuditActionCleanupAudit   = "cleanup_audit_events"
)

// AuditEvent is one entry of the import trail. Import events carry the
// import's counts as JSON in Metadata; a failed import has no EntityID
// because no board was stored.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // "<origin>_import" or a maintenance action
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
