package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploaderStoresUnderRandomName(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "/uploads/")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), "Grades Report.PDF", []byte("pdf-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))
	// The original filename must not leak into the stored name.
	assert.NotContains(t, url, "Grades")

	stored := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), data)
}

func TestLocalUploaderDistinctNames(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	a, err := u.Upload(context.Background(), "id.jpg", []byte("a"))
	require.NoError(t, err)
	b, err := u.Upload(context.Background(), "id.jpg", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
