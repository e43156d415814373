package entrypoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/config"
	"github.com/mrlokans/ipcboard/internal/uploads"
)

// newUploadStore builds the configured upload backend. An S3 bucket is
// created when it does not exist yet.
func newUploadStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (uploads.Store, error) {
	switch cfg.Uploads.Backend {
	case config.UploadBackendLocal, "":
		store, err := uploads.NewLocalStore(cfg.Uploads.Dir, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.UploadBackendS3:
		store, err := uploads.NewS3Store(uploads.S3Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		}, log)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported upload backend %q", cfg.Uploads.Backend)
	}
}
