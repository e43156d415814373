package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ipcboard/internal/database"
	"github.com/mrlokans/ipcboard/internal/entities"
)

const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

// healthTaskID is looked up in the task queue to check that its database answers.
const healthTaskID = "healthcheck"

// HealthResponse reports service reachability and a summary of stored data.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Boards  int64             `json:"boards"`
	// Imports counts import records by status.
	Imports map[entities.ImportStatus]int64 `json:"imports,omitempty"`
}

type HealthController struct {
	db      *database.Database
	tasks   TaskRunner
	version string
}

// NewHealthController builds the health endpoints. tasks may be nil when the
// background queue is disabled.
func NewHealthController(db *database.Database, tasks TaskRunner, version string) *HealthController {
	return &HealthController{
		db:      db,
		tasks:   tasks,
		version: version,
	}
}

// Status handles GET /health
// A failing database makes the service unhealthy (503). An unreachable task
// queue only degrades it, since synchronous imports still work.
func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	health := HealthResponse{
		Status:  healthHealthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string),
	}

	if err := h.checkDatabase(ctx, &health); err != nil {
		health.Checks["database"] = "error: " + err.Error()
		health.Status = healthUnhealthy
	}

	switch {
	case h.tasks == nil:
		health.Checks["task_queue"] = "disabled"
	default:
		if _, err := h.tasks.Status(ctx, healthTaskID); err != nil {
			health.Checks["task_queue"] = "error: " + err.Error()
			if health.Status == healthHealthy {
				health.Status = healthDegraded
			}
		} else {
			health.Checks["task_queue"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if health.Status == healthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}

// checkDatabase pings the database and fills in the stored data summary.
func (h *HealthController) checkDatabase(ctx context.Context, health *HealthResponse) error {
	if h.db == nil {
		health.Checks["database"] = "not configured"
		return nil
	}

	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	db := h.db.DB.WithContext(ctx)
	if err := db.Model(&entities.Board{}).Count(&health.Boards).Error; err != nil {
		return err
	}

	var rows []struct {
		Status entities.ImportStatus
		Count  int64
	}
	err = db.Model(&entities.ImportRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	health.Imports = make(map[entities.ImportStatus]int64, len(rows))
	for _, row := range rows {
		health.Imports[row.Status] = row.Count
	}

	health.Checks["database"] = "ok"
	return nil
}

func (h *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
