// Package storage abstracts where submitted documents land.  Handlers only
// see the Uploader interface; the default implementation writes to local
// disk under randomized names.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores a document and returns the public URL it will be served
// from.  name is the client's original filename, used only for its
// extension.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// LocalUploader writes documents to a directory on disk.  Stored names are
// random UUIDs so uploads cannot collide or be guessed from applicant
// names.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader ensures the target directory exists and returns an
// uploader rooted there.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the document and returns its URL.
func (u *LocalUploader) Upload(_ context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	stored := uuid.New().String() + ext
	path := filepath.Join(u.dir, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", stored, err)
	}
	return u.baseURL + "/" + stored, nil
}
