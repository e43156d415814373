// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── boards/          # Board graph writes for the importer, read queries
//	├── imports/         # Import history records
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(database.Config{Path: "./boards.db"}, log)
//
//	boardsRepo := boards.NewRepository(db.DB)
//	importsRepo := imports.NewRepository(db.DB)
//
//	board, err := boardsRepo.GetBoard(ctx, 1)
//
// Unique-key violations surface as gorm.ErrDuplicatedKey on both drivers
// because connections are opened with TranslateError.
package database
