// Package blobstore resolves uploaded binary objects to stable download
// URLs. The disk implementation pairs with a static file route on the HTTP
// server.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes blobs under Dir and addresses them below BaseURL.
type Store struct {
	Dir     string
	BaseURL string
}

// New creates the backing directory if needed.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload stores the bytes under path and returns the download URL the
// uploaded object is served from. Path separators are preserved below Dir;
// attempts to escape it are rejected.
func (s *Store) Upload(path string, data []byte) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + path))[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid blob path %q", path)
	}

	full := filepath.Join(s.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob subdirectory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return s.BaseURL + "/" + clean, nil
}
