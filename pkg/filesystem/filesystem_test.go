package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFilesystem(t *testing.T) {
	dir := t.TempDir()
	fsys := NewOS()

	target := filepath.Join(dir, "a", "b", "file.md")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, fsys.WriteFile(target, []byte("hello"), 0644))

	data, err := fsys.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := fsys.ReadDir(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.md", entries[0].Name())

	t.Run("lstat_sees_symlinks", func(t *testing.T) {
		link := filepath.Join(dir, "link.md")
		require.NoError(t, os.Symlink(target, link))

		info, err := fsys.Lstat(link)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&fs.ModeSymlink)

		dest, err := fsys.Readlink(link)
		require.NoError(t, err)
		assert.Equal(t, target, dest)

		info, err = fsys.Stat(link)
		require.NoError(t, err)
		assert.True(t, info.Mode().IsRegular())
	})

	t.Run("read_file_rejects_directories", func(t *testing.T) {
		_, err := fsys.ReadFile(filepath.Join(dir, "a"))
		assert.Error(t, err)
	})

	t.Run("rename_replaces_destination", func(t *testing.T) {
		tmp := filepath.Join(dir, "tmp.md")
		require.NoError(t, fsys.WriteFile(tmp, []byte("new"), 0644))
		require.NoError(t, fsys.Rename(tmp, target))

		data, err := fsys.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestMemoryFilesystem(t *testing.T) {
	fsys := NewMemory()

	require.NoError(t, fsys.MkdirAll("/project/docs", 0755))
	require.NoError(t, fsys.WriteFile("/project/docs/README.md", []byte("docs"), 0644))

	info, err := fsys.Lstat("/project/docs/README.md")
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	_, err = fsys.Readlink("/project/docs/README.md")
	assert.Error(t, err)

	require.NoError(t, fsys.RemoveAll("/project/docs"))
	_, err = fsys.Stat("/project/docs")
	assert.True(t, os.IsNotExist(err))
}
