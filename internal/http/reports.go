package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/reports"
)

type ReportsController struct {
	boards    BoardReader
	generator *reports.Generator
}

func NewReportsController(boards BoardReader, generator *reports.Generator) *ReportsController {
	return &ReportsController{boards: boards, generator: generator}
}

// GetReport handles GET /api/boards/:id/reports/:kind
// Kinds are "netlist" and "components"; the body is plain text.
func (rc *ReportsController) GetReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := rc.boards.GetBoard(ctx, id); err != nil {
		if errors.Is(err, boards.ErrNotFound) {
			respondNotFound(c, "board")
			return
		}
		respondInternalError(c, err, "get board")
		return
	}

	var buf bytes.Buffer
	if err := rc.generator.Write(ctx, c.Param("kind"), id, &buf); err != nil {
		if errors.Is(err, reports.ErrUnknownKind) {
			respondBadRequest(c, "unknown report kind")
			return
		}
		respondInternalError(c, err, "generate report")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
