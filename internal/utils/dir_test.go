package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsFileIsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	require.True(t, IsFile(file))
	require.False(t, IsDirectory(file))
	require.True(t, IsDirectory(dir))
	require.False(t, IsFile(dir))
	require.False(t, IsFile(filepath.Join(dir, "missing")))
}

func TestPartialPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "b", ".partial-c.tif"), PartialPath(filepath.Join("a", "b", "c.tif")))
}

func TestCopyFile_KeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o600))

	require.NoError(t, CopyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(PartialPath(dst))
	require.True(t, os.IsNotExist(err))
}
