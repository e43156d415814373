package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type UploadBackend string

const (
	UploadBackendLocal UploadBackend = "local" // Files kept under Uploads.Dir (default)
	UploadBackendS3    UploadBackend = "s3"    // Files kept in an S3-compatible bucket
)

type (
	Config struct {
		HTTP
		Global
		Database
		Uploads
		S3
		Tasks
		Maintenance
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // sqlite or postgres
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	Uploads struct {
		Backend           UploadBackend
		Dir               string
		AllowedExtensions []string // lower-case, without the leading dot
		MaxSizeMB         int64
		Retention         time.Duration // Stored uploads older than this are removed (0 keeps them)
	}
	S3 struct {
		Endpoint     string // Custom endpoint for MinIO and other S3-compatible stores
		Region       string
		Bucket       string
		AccessKey    string
		SecretKey    string
		UsePathStyle bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // console or json
		Output string // stdout, stderr or a file path
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Upload defaults
	v.SetDefault("uploads_backend", string(UploadBackendLocal))
	v.SetDefault("uploads_dir", DefaultUploadsDir)
	v.SetDefault("uploads_allowed_extensions", "cvg,xml")
	v.SetDefault("uploads_max_size_mb", 50)
	v.SetDefault("uploads_retention", "720h") // 30 days

	// S3 defaults
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_use_path_style", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "30 3 * * *")
	v.SetDefault("audit_retention_days", 30)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_output", "stdout")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Uploads: Uploads{
			Backend:           UploadBackend(v.GetString("UPLOADS_BACKEND")),
			Dir:               v.GetString("UPLOADS_DIR"),
			AllowedExtensions: parseExtensions(v.GetString("UPLOADS_ALLOWED_EXTENSIONS")),
			MaxSizeMB:         v.GetInt64("UPLOADS_MAX_SIZE_MB"),
			Retention:         v.GetDuration("UPLOADS_RETENTION"),
		},
		S3: S3{
			Endpoint:     v.GetString("S3_ENDPOINT"),
			Region:       v.GetString("S3_REGION"),
			Bucket:       v.GetString("S3_BUCKET"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
			UsePathStyle: v.GetBool("S3_USE_PATH_STYLE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}
}

// parseExtensions splits a comma-separated list like ".CVG, xml" into
// normalized extensions ("cvg", "xml").
func parseExtensions(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
