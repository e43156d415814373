package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ipcboard/internal/entities"
)

// AuditReader is the read side of the audit log.
// Implemented by audit.Service.
type AuditReader interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetBoardEvents(boardID uint) ([]entities.AuditEvent, error)
}

type AuditController struct {
	audit AuditReader
}

func NewAuditController(audit AuditReader) *AuditController {
	return &AuditController{audit: audit}
}

// ListEvents handles GET /api/audit?type=import&limit=25&offset=0
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.audit.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.audit.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, paginated(events, total, limit, offset))
}

// GetBoardEvents handles GET /api/boards/:id/audit
func (ac *AuditController) GetBoardEvents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	events, err := ac.audit.GetBoardEvents(id)
	if err != nil {
		respondInternalError(c, err, "list board audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
