package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskSaver writes exported documents under a single directory, the service
// side's stand-in for a browser download.
type DiskSaver struct {
	Dir string
}

// SaveTextAsFile writes the text to Dir/filename. The filename is flattened
// to its base so callers cannot write outside the export directory.
func (s DiskSaver) SaveTextAsFile(text, filename, mimeType string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
