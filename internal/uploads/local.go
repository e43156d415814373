package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// LocalStore keeps uploads on the local file system under a base directory.
type LocalStore struct {
	baseDir string
	log     *zap.Logger
}

func NewLocalStore(baseDir string, log *zap.Logger) (*LocalStore, error) {
	if baseDir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", baseDir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalStore{baseDir: baseDir, log: log}, nil
}

func (s *LocalStore) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := NewKey(fileName, time.Now())
	fullPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.log.Debug("upload stored", zap.String("key", key), zap.Int64("size", size))
	return key, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
