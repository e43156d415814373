package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/database"
	"github.com/mrlokans/ipcboard/internal/reports"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Imports  ImportRunner
	Boards   BoardReader
	Reports  *reports.Generator
	Audit    AuditReader
	Logger   *zap.Logger

	// Background tasks (nil when disabled)
	Tasks TaskRunner

	// Upload limits
	AllowedExtensions []string
	MaxUploadSizeMB   int64

	// Maintenance task parameters for manual runs
	AuditRetentionDays int
	UploadRetention    time.Duration

	// Application info
	Version string
}
