package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"gudang/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaver(t *testing.T) {
	dir := t.TempDir()
	saver := export.DiskSaver{Dir: filepath.Join(dir, "exports")}

	err := saver.SaveTextAsFile("\"a\"\n\"1\"", "report.csv", "text/csv;charset=utf-8")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "exports", "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\"\n\"1\"", string(raw))
}

func TestDiskSaver_FlattensFilename(t *testing.T) {
	dir := t.TempDir()
	saver := export.DiskSaver{Dir: dir}

	err := saver.SaveTextAsFile("x", "../../etc/report.csv", "text/csv")
	require.NoError(t, err)

	// Only the base name is used; nothing escapes the export directory.
	_, err = os.Stat(filepath.Join(dir, "report.csv"))
	assert.NoError(t, err)
}
