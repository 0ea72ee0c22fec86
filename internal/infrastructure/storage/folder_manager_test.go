package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFolderManager_CreateFolder(t *testing.T) {
	baseDir := t.TempDir()
	fm := NewLocalFolderManager(baseDir, zap.NewNop())
	ctx := context.Background()

	name, err := fm.CreateFolder(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", name)
	assert.True(t, fm.Exists(ctx, "doc-1"))
	assert.False(t, fm.Exists(ctx, "doc-2"))

	// Creating an existing folder is a no-op
	_, err = fm.CreateFolder(ctx, "doc-1")
	assert.NoError(t, err)
}

func TestLocalFolderManager_SanitizeName(t *testing.T) {
	fm := NewLocalFolderManager(t.TempDir(), zap.NewNop())

	cases := []struct {
		in   string
		want string
	}{
		{"doc-1", "doc-1"},
		{"a b/c", "a_b_c"},
		{"../../etc", "etc"},
		{"  padded  ", "padded"},
		{"report.v2", "report.v2"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, fm.SanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestLocalFolderManager_CreateFolder_RejectsEmptyDerivedName(t *testing.T) {
	fm := NewLocalFolderManager(t.TempDir(), zap.NewNop())

	_, err := fm.CreateFolder(context.Background(), "../..")
	require.Error(t, err)
}
