package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/ipcboard/internal/tasks"
)

type TasksController struct {
	tasks              TaskRunner
	auditRetentionDays int
	uploadRetention    time.Duration
}

func NewTasksController(runner TaskRunner, auditRetentionDays int, uploadRetention time.Duration) *TasksController {
	return &TasksController{
		tasks:              runner,
		auditRetentionDays: auditRetentionDays,
		uploadRetention:    uploadRetention,
	}
}

// RunTask handles POST /api/tasks/:type/run
// Supported types: cleanup_audit_events, cleanup_uploads.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var task backlite.Task
	switch taskType {
	case "cleanup_audit_events":
		task = tasks.CleanupAuditEventsTask{RetentionDays: tc.auditRetentionDays}
	case "cleanup_uploads":
		task = tasks.CleanupUploadsTask{Retention: tc.uploadRetention}
	default:
		respondBadRequest(c, "unknown task type")
		return
	}

	id, err := tc.tasks.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}
	respondAccepted(c, "Task queued", gin.H{"task_id": id, "type": taskType})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.tasks.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "status": tasks.StatusString(status)})
}
