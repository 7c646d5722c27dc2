package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.C", "a.G", "c.txt", "d.D"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.C"), 0o755))

	files, err := FindFiles(dir, "*.[CDG]")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.G"),
		filepath.Join(dir, "b.C"),
		filepath.Join(dir, "d.D"),
	}, files)
}

func TestFindFiles_FollowsSymlinks(t *testing.T) {
	dumps := t.TempDir()
	target := filepath.Join(dumps, "Foo (1990).C")
	require.NoError(t, os.WriteFile(target, []byte{0xC0}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dumps, "folder"), 0o755))

	dir := t.TempDir()
	if err := os.Symlink(target, filepath.Join(dir, "Foo (1990).C")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dumps, "folder"), filepath.Join(dir, "Dir.C")))
	require.NoError(t, os.Symlink(filepath.Join(dumps, "gone.C"), filepath.Join(dir, "Dangling.C")))

	files, err := FindFiles(dir, "*.C")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Foo (1990).C")}, files)
}

func TestFindFiles_Errors(t *testing.T) {
	_, err := FindFiles(t.TempDir(), "[")
	assert.ErrorIs(t, err, filepath.ErrBadPattern)

	_, err = FindFiles(filepath.Join(t.TempDir(), "missing"), "*")
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Panics(t, func() { _, _ = FindFiles(".", "") })
}
