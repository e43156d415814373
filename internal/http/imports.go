package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/database/imports"
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/logger"
	"github.com/mrlokans/ipcboard/internal/tasks"
)

type ImportsController struct {
	imports ImportRunner
	tasks   TaskRunner // nil when background tasks are disabled
}

func NewImportsController(imports ImportRunner, tasks TaskRunner) *ImportsController {
	return &ImportsController{imports: imports, tasks: tasks}
}

// ImportResponse is an import record with its stored JSON columns inlined.
type ImportResponse struct {
	entities.ImportRecord
	Stats       json.RawMessage `json:"stats,omitempty"`
	Diagnostics json.RawMessage `json:"diagnostics,omitempty"`
	TaskStatus  string          `json:"task_status,omitempty"`
}

func newImportResponse(record entities.ImportRecord) ImportResponse {
	resp := ImportResponse{ImportRecord: record}
	if record.Stats != "" {
		resp.Stats = json.RawMessage(record.Stats)
	}
	if record.Diagnostics != "" {
		resp.Diagnostics = json.RawMessage(record.Diagnostics)
	}
	return resp
}

// ListImports handles GET /api/imports
func (ic *ImportsController) ListImports(c *gin.Context) {
	limit, offset := parsePagination(c)
	records, total, err := ic.imports.ListImports(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list imports")
		return
	}

	out := make([]ImportResponse, 0, len(records))
	for _, r := range records {
		out = append(out, newImportResponse(r))
	}
	c.JSON(http.StatusOK, paginated(out, total, limit, offset))
}

// GetImport handles GET /api/imports/:id
func (ic *ImportsController) GetImport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := ic.imports.GetImport(c.Request.Context(), id)
	if errors.Is(err, imports.ErrNotFound) {
		respondNotFound(c, "import")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get import")
		return
	}

	resp := newImportResponse(*record)
	if record.TaskID != "" && ic.tasks != nil {
		status, err := ic.tasks.Status(c.Request.Context(), record.TaskID)
		if err != nil {
			logger.FromGin(c).Warn("failed to read task status",
				zap.String("task_id", record.TaskID), zap.Error(err))
		} else {
			resp.TaskStatus = tasks.StatusString(status)
		}
	}
	c.JSON(http.StatusOK, resp)
}
