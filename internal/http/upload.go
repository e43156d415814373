package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
	"github.com/mrlokans/ipcboard/internal/logger"
	"github.com/mrlokans/ipcboard/internal/services"
	"github.com/mrlokans/ipcboard/internal/utils"
)

const uploadField = "file"

// Error codes returned by the upload endpoint.
const (
	codeMissingFile       = "missing_file"
	codeUnsupportedFormat = "unsupported_extension"
	codeFileTooLarge      = "file_too_large"
	codeBoardExists       = "board_exists"
	codeInvalidDocument   = "invalid_document"
	codeImportFailed      = "import_failed"
	codeQueueDisabled     = "queue_disabled"
)

type UploadController struct {
	imports           ImportRunner
	allowedExtensions []string
	maxBytes          int64
}

func NewUploadController(imports ImportRunner, allowedExtensions []string, maxSizeMB int64) *UploadController {
	return &UploadController{
		imports:           imports,
		allowedExtensions: allowedExtensions,
		maxBytes:          maxSizeMB * 1024 * 1024,
	}
}

// UploadResponse is returned after a synchronous import.
type UploadResponse struct {
	Message     string                 `json:"message"`
	ImportID    uint                   `json:"import_id,omitempty"`
	BoardID     uint                   `json:"board_id,omitempty"`
	BoardName   string                 `json:"board_name"`
	Preview     bool                   `json:"preview,omitempty"`
	Stats       importers.Stats        `json:"stats"`
	Diagnostics []importers.Diagnostic `json:"diagnostics"`
}

// Upload handles POST /api/upload
// The multipart field "file" carries the document. ?async=true queues the
// import and returns 202; ?dry_run=true reports what would be stored.
func (uc *UploadController) Upload(c *gin.Context) {
	if uc.maxBytes > 0 {
		// Leave room for the multipart envelope around the file.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.maxBytes+1<<20)
	}

	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uc.respondTooLarge(c)
			return
		}
		respondError(c, http.StatusBadRequest, codeMissingFile, "file not provided")
		return
	}
	defer file.Close()

	fileName := utils.SanitizeFilename(header.Filename)
	if !uc.allowed(fileName) {
		respondError(c, http.StatusBadRequest, codeUnsupportedFormat,
			fmt.Sprintf("unsupported file type, allowed: %s", strings.Join(uc.allowedExtensions, ", ")))
		return
	}
	if uc.maxBytes > 0 && header.Size > uc.maxBytes {
		uc.respondTooLarge(c)
		return
	}

	var body io.Reader = file
	if uc.maxBytes > 0 {
		body = io.LimitReader(file, uc.maxBytes)
	}
	ctx := c.Request.Context()

	if c.Query("dry_run") == "true" {
		result, err := uc.imports.Preview(ctx, body)
		if err != nil {
			uc.respondImportError(c, err, 0)
			return
		}
		c.JSON(http.StatusOK, UploadResponse{
			Message:     "Preview only, nothing was stored",
			BoardName:   result.BoardName,
			Preview:     true,
			Stats:       result.Stats,
			Diagnostics: result.Diagnostics,
		})
		return
	}

	req := services.UploadRequest{
		FileName:  fileName,
		Body:      body,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	if c.Query("async") == "true" {
		record, err := uc.imports.UploadAsync(ctx, req)
		if errors.Is(err, services.ErrQueueDisabled) {
			respondError(c, http.StatusServiceUnavailable, codeQueueDisabled, "asynchronous imports are disabled")
			return
		}
		if err != nil {
			respondInternalError(c, err, "queue import")
			return
		}
		respondAccepted(c, "import queued", gin.H{
			"import_id": record.ID,
			"task_id":   record.TaskID,
			"status":    record.Status,
		})
		return
	}

	outcome, err := uc.imports.Upload(ctx, req)
	if err != nil {
		var importID uint
		if outcome != nil && outcome.Record != nil {
			importID = outcome.Record.ID
		}
		uc.respondImportError(c, err, importID)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Message:     "Board imported",
		ImportID:    outcome.Record.ID,
		BoardID:     outcome.Result.BoardID,
		BoardName:   outcome.Result.BoardName,
		Stats:       outcome.Result.Stats,
		Diagnostics: outcome.Result.Diagnostics,
	})
}

func (uc *UploadController) allowed(fileName string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	return ext != "" && slices.Contains(uc.allowedExtensions, ext)
}

func (uc *UploadController) respondTooLarge(c *gin.Context) {
	respondError(c, http.StatusBadRequest, codeFileTooLarge,
		fmt.Sprintf("file too large (max %d MB)", uc.maxBytes/(1024*1024)))
}

// respondImportError maps import failures onto HTTP statuses: 409 for a board
// that already exists, 422 for documents that are not IPC-2581 XML and 500
// for everything else.
func (uc *UploadController) respondImportError(c *gin.Context, err error, importID uint) {
	details := gin.H{}
	if importID != 0 {
		details["import_id"] = importID
	}

	var phaseErr *importers.PhaseError
	switch {
	case errors.Is(err, importers.ErrBoardExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: codeBoardExists, Details: orNil(details)})
	case errors.Is(err, ipc2581.ErrMalformedDocument), errors.Is(err, ipc2581.ErrNotIPC2581):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: codeInvalidDocument, Details: orNil(details)})
	case errors.As(err, &phaseErr):
		logger.FromGin(c).Error("import rolled back", zap.String("phase", phaseErr.Phase), zap.Error(phaseErr.Err))
		details["phase"] = phaseErr.Phase
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "import failed", Code: codeImportFailed, Details: details})
	default:
		respondInternalError(c, err, "import document")
	}
}

func orNil(details gin.H) any {
	if len(details) == 0 {
		return nil
	}
	return details
}
