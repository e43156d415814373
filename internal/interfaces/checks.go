package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/ipcboard/internal/audit"
	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/database/imports"
	"github.com/mrlokans/ipcboard/internal/http"
	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/reports"
	"github.com/mrlokans/ipcboard/internal/scheduler"
	"github.com/mrlokans/ipcboard/internal/services"
	"github.com/mrlokans/ipcboard/internal/tasks"
	"github.com/mrlokans/ipcboard/internal/uploads"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ importers.Writer = (*boards.Repository)(nil)
var _ http.BoardReader = (*boards.Repository)(nil)
var _ reports.Source = (*boards.Repository)(nil)
var _ services.ImportRecords = (*imports.Repository)(nil)

// =============================================================================
// Upload Storage
// =============================================================================

var _ uploads.Store = (*uploads.LocalStore)(nil)
var _ uploads.Store = (*uploads.S3Store)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.ImportRunner = (*services.ImportService)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ services.Auditor = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskRunner = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ services.ImportQueue = (*tasks.Client)(nil)
var _ tasks.DocumentImporter = (*services.ImportService)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.UploadCleaner = (*services.ImportService)(nil)
