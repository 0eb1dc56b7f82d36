package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

var _ ports.FileSystem = (*RealFileSystem)(nil)

func TestRealFileSystem(t *testing.T) {
	fs := NewRealFileSystem()
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.json")

	assert.False(t, fs.Exists(file))
	assert.True(t, fs.IsDir(dir))

	require.NoError(t, fs.WriteFile(file, []byte(`{"a":1}`), 0o600))
	assert.True(t, fs.Exists(file))
	assert.False(t, fs.IsDir(file))

	data, err := fs.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.WriteFile(file, []byte(`{"a":2}`), 0o644))
	data, err = fs.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestRealFileSystem_MkdirAll(t *testing.T) {
	fs := NewRealFileSystem()
	nested := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, fs.MkdirAll(nested, 0o755))
	assert.True(t, fs.IsDir(nested))
}

func TestRealFileSystem_WriteMissingDir(t *testing.T) {
	fs := NewRealFileSystem()
	err := fs.WriteFile(filepath.Join(t.TempDir(), "missing", "x"), []byte("x"), 0o644)
	assert.Error(t, err)
}
