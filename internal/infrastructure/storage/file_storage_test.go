package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())
	ctx := context.Background()

	content := []byte("%PDF-1.4 test content")
	require.NoError(t, fs.Save(ctx, "doc-1/passport.pdf", content))

	got, err := fs.Read(ctx, "doc-1/passport.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.True(t, fs.Exists(ctx, "doc-1/passport.pdf"))
	assert.False(t, fs.Exists(ctx, "doc-1/missing.pdf"))
}

func TestLocalFileStorage_SaveCreatesParentDirectories(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())

	err := fs.Save(context.Background(), "doc-1/supporting/utility_bill.pdf", []byte("data"))
	require.NoError(t, err)
	assert.True(t, fs.Exists(context.Background(), "doc-1/supporting/utility_bill.pdf"))
}

func TestLocalFileStorage_Delete(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "doc-1/a.pdf", []byte("data")))
	require.NoError(t, fs.Delete(ctx, "doc-1/a.pdf"))
	assert.False(t, fs.Exists(ctx, "doc-1/a.pdf"))

	// Deleting a missing file is a no-op
	assert.NoError(t, fs.Delete(ctx, "doc-1/a.pdf"))
}

func TestLocalFileStorage_RejectsPathEscape(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())
	ctx := context.Background()

	err := fs.Save(ctx, "../outside.txt", []byte("data"))
	require.Error(t, err)

	_, err = fs.Read(ctx, filepath.Join("..", "..", "etc", "passwd"))
	require.Error(t, err)
}

func TestLocalFileStorage_GetFullPath(t *testing.T) {
	fs := NewLocalFileStorage("/var/documents", zap.NewNop())
	assert.Equal(t, filepath.Join("/var/documents", "doc-1", "a.pdf"), fs.GetFullPath("doc-1/a.pdf"))
}
