package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver   string // sqlite (default) or postgres
	Path     string // sqlite file path
	DSN      string // postgres connection string
	LogLevel string // application log level, mapped onto GORM's
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(cfg Config, log *zap.Logger) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database initialized",
		zap.String("driver", driverName(cfg.Driver)),
		zap.String("path", cfg.Path))

	return &Database{DB: db}, nil
}

// Open connects through the given dialector. Unique-key violations are
// translated to gorm.ErrDuplicatedKey so callers can match on them.
func Open(dialector gorm.Dialector, log gormlogger.Interface) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	models := append(entities.BoardModels(),
		&entities.ImportRecord{},
		&entities.AuditEvent{},
	)
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch driverName(cfg.Driver) {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite database path is required")
		}
		return sqlite.Open(cfg.Path), nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}
