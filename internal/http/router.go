package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(log))
	router.Use(logger.Recovery(log))

	health := NewHealthController(cfg.Database, cfg.Tasks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	if cfg.Imports != nil {
		upload := NewUploadController(cfg.Imports, cfg.AllowedExtensions, cfg.MaxUploadSizeMB)
		imports := NewImportsController(cfg.Imports, cfg.Tasks)
		api.POST("/upload", upload.Upload)
		api.GET("/imports", imports.ListImports)
		api.GET("/imports/:id", imports.GetImport)
	}

	if cfg.Boards != nil {
		boards := NewBoardsController(cfg.Boards)
		api.GET("/boards", boards.ListBoards)
		api.GET("/boards/:id", boards.GetBoard)
		api.GET("/boards/:id/layers", boards.GetLayers)
		api.GET("/boards/:id/components", boards.GetComponents)
		api.GET("/boards/:id/components/:name/pins/:pin/net", boards.GetPinNet)
		api.GET("/boards/:id/nets", boards.GetNets)
		api.GET("/boards/:id/nets/by-name/:name", boards.GetNetByName)
		api.GET("/boards/:id/geometries", boards.GetGeometries)
		api.GET("/nets/:id/pins", boards.GetNetPins)
		api.GET("/components/:id/details", boards.GetComponentDetails)

		if cfg.Reports != nil {
			reports := NewReportsController(cfg.Boards, cfg.Reports)
			api.GET("/boards/:id/reports/:kind", reports.GetReport)
		}
	}

	if cfg.Audit != nil {
		audit := NewAuditController(cfg.Audit)
		api.GET("/audit", audit.ListEvents)
		api.GET("/boards/:id/audit", audit.GetBoardEvents)
	}

	if cfg.Tasks != nil {
		tasks := NewTasksController(cfg.Tasks, cfg.AuditRetentionDays, cfg.UploadRetention)
		api.POST("/tasks/:type/run", tasks.RunTask)
		api.GET("/tasks/:id", tasks.GetTaskStatus)
	}

	return router
}
