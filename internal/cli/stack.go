package cli

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/audit"
	"github.com/mrlokans/ipcboard/internal/database"
	auditRepo "github.com/mrlokans/ipcboard/internal/database/audit"
	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/database/imports"
	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/logger"
	"github.com/mrlokans/ipcboard/internal/services"
)

// stack holds the pieces a command needs against a local SQLite database.
type stack struct {
	db      *database.Database
	boards  *boards.Repository
	auditor *audit.Service
	imports *services.ImportService
	log     *zap.Logger
}

func openStack(dbPath string, verbose bool) (*stack, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(database.Config{Path: absDBPath, LogLevel: level}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	boardRepo := boards.NewRepository(db.DB)
	auditor := audit.NewService(auditRepo.NewRepository(db.DB), log)
	importer := importers.NewImporter(importers.NewRepositoryStore(boardRepo), log)

	return &stack{
		db:      db,
		boards:  boardRepo,
		auditor: auditor,
		imports: services.NewImportService(imports.NewRepository(db.DB), nil, importer, auditor, log),
		log:     log,
	}, nil
}

func (s *stack) Close() error {
	s.auditor.Wait()
	_ = s.log.Sync()
	return s.db.Close()
}
