package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/audit"
	"github.com/mrlokans/ipcboard/internal/config"
	"github.com/mrlokans/ipcboard/internal/database"
	auditRepo "github.com/mrlokans/ipcboard/internal/database/audit"
	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/database/imports"
	http_controllers "github.com/mrlokans/ipcboard/internal/http"
	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/logger"
	"github.com/mrlokans/ipcboard/internal/reports"
	"github.com/mrlokans/ipcboard/internal/scheduler"
	"github.com/mrlokans/ipcboard/internal/services"
	"github.com/mrlokans/ipcboard/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting uploads before the workers go away.
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("server exiting")
}

func Run(cfg *config.Config, version string) {
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting ipcboard", zap.String("version", version))

	db, err := database.NewDatabase(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		LogLevel: cfg.Log.Level,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	store, err := newUploadStore(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialize upload storage", zap.Error(err))
	}

	boardRepo := boards.NewRepository(db.DB)
	auditor := audit.NewService(auditRepo.NewRepository(db.DB), log)
	importer := importers.NewImporter(importers.NewRepositoryStore(boardRepo), log)
	importService := services.NewImportService(imports.NewRepository(db.DB), store, importer, auditor, log)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, log)
		if err != nil {
			log.Fatal("failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewImportDocumentQueue(importService),
			tasks.NewCleanupAuditEventsQueue(auditor, log),
			tasks.NewCleanupUploadsQueue(importService, log),
		)
		importService.SetQueue(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, scheduler.MaintenanceConfig{
			Enabled:            cfg.Maintenance.Enabled,
			Schedule:           cfg.Maintenance.Schedule,
			AuditRetentionDays: cfg.Audit.RetentionDays,
			UploadRetention:    cfg.Uploads.Retention,
		}, log)
		if err := maintenance.Start(taskCtx); err != nil {
			log.Error("failed to start maintenance scheduler", zap.Error(err))
		}
	} else {
		log.Warn("background tasks disabled, asynchronous uploads and maintenance are unavailable")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Imports:            importService,
		Boards:             boardRepo,
		Reports:            reports.NewGenerator(boardRepo),
		Audit:              auditor,
		Logger:             log,
		AllowedExtensions:  cfg.Uploads.AllowedExtensions,
		MaxUploadSizeMB:    cfg.Uploads.MaxSizeMB,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		UploadRetention:    cfg.Uploads.Retention,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		auditor.Wait()
	}

	Serve(router, cfg, log, onShutdown)
}
