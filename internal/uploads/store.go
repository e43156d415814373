// Package uploads keeps uploaded IPC-2581 documents until their import has
// run. Documents are addressed by an opaque storage key.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("upload not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Store saves and retrieves uploaded documents.
type Store interface {
	// Save writes the document and returns the key it can be opened with.
	Save(ctx context.Context, fileName string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey builds a key of the form "2006/01/<uuid>.<ext>", keeping the original
// file extension so stored files stay recognisable.
func NewKey(fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), ext)
}

// validateKey rejects keys that could escape the store's root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
