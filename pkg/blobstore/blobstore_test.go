package blobstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"gudang/pkg/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := blobstore.New(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	url, err := s.Upload("product_images/user-1/42_kopi.png", []byte("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/product_images/user-1/42_kopi.png", url)

	raw, err := os.ReadFile(filepath.Join(dir, "product_images", "user-1", "42_kopi.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(raw))
}

func TestUpload_RejectsEscapingPaths(t *testing.T) {
	s, err := blobstore.New(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = s.Upload("../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = s.Upload("", []byte("x"))
	assert.Error(t, err)
}

func TestUpload_NormalizesInnerTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := blobstore.New(dir, "http://localhost:8080/files")
	require.NoError(t, err)

	// Inner dot segments collapse but stay inside the root.
	url, err := s.Upload("a/../b/file.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/b/file.txt", url)
}
